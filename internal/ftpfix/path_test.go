package ftpfix

import "testing"

func TestUnescape(t *testing.T) {
	cases := map[string]string{
		"ftp://host/a%20b.mkv": "ftp://host/a b.mkv",
		"%5Bgroup%5d%2Fname":   "[group]/name",
		"%E2%82%AC":            "€",
		"100%":                 "100%",
		"50%2":                 "50%2",
		"%zz%20":               "%zz ",
		"no escapes":           "no escapes",
		"%%41":                 "%A",
	}
	for in, want := range cases {
		if got := Unescape(in); got != want {
			t.Fatalf("Unescape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(`ftp://host\share\My%20Show\ep%201.mkv`)
	if want := "ftp://host/share/My Show/ep 1.mkv"; got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestIsFTP(t *testing.T) {
	cases := map[string]bool{
		"ftp://host/a.mkv":   true,
		"FTP://host/a.mkv":   true,
		"ftps://host/a.mkv":  false,
		"http://host/a.mkv":  false,
		"/srv/ftp://odd.mkv": false,
		"ftp.mkv":            false,
		"":                   false,
	}
	for in, want := range cases {
		if got := IsFTP(in); got != want {
			t.Fatalf("IsFTP(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSplitAndExtension(t *testing.T) {
	dir, file := Split("ftp://host/show/ep1.mkv")
	if dir != "ftp://host/show" || file != "ep1.mkv" {
		t.Fatalf("Split = %q, %q", dir, file)
	}
	cases := map[string]bool{
		"ftp://host/show/ep1.mkv": true,
		"ftp://host/show/":        false,
		"ftp://host/show":         false,
		"ftp://host/show/.hidden": false,
		"ftp://host/show/trail.":  false,
		"ftp://example.com":       false,
		"ftp://example.com/":      false,
		"ftp://example.com/a.mkv": true,
	}
	for in, want := range cases {
		if got := HasExtension(in); got != want {
			t.Fatalf("HasExtension(%q) = %v, want %v", in, got, want)
		}
	}
	if got := Join("ftp://host/show/", "playlist.pls"); got != "ftp://host/show/playlist.pls" {
		t.Fatalf("Join = %q", got)
	}
}

func TestFailedSubtitle(t *testing.T) {
	got, ok := FailedSubtitle("Can not open external file ftp://foo%20bar.srt.\n")
	if !ok || got != "ftp://foo%20bar.srt" {
		t.Fatalf("FailedSubtitle = %q, %v", got, ok)
	}
	if _, ok := FailedSubtitle("Cannot open file ftp://foo.srt\n"); ok {
		t.Fatalf("unrelated warning must not match")
	}
	if _, ok := FailedSubtitle("Can not open external file .\n"); ok {
		t.Fatalf("empty file name must not match")
	}
}
