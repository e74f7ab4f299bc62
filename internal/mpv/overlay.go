package mpv

const overlayFormat = "ass-events"

// Overlay is an osd-overlay owned by one script. Data holds the ASS events
// shown by the next Update.
type Overlay struct {
	cmd  Commander
	id   int
	Data string
}

func NewOverlay(cmd Commander, id int) *Overlay {
	return &Overlay{cmd: cmd, id: id}
}

func (o *Overlay) ID() int {
	return o.id
}

func (o *Overlay) Update() error {
	return o.cmd.Command("osd-overlay", o.id, overlayFormat, o.Data)
}

func (o *Overlay) Remove() error {
	o.Data = ""
	return o.cmd.Command("osd-overlay", o.id, "none", "")
}
