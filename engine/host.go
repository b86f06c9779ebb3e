package engine

// Host is the surface the engine mounts into.
type Host interface {
	// HostID names the mount point. An empty id means it does not exist.
	HostID() string
	// Viewport is the visible size in pixels.
	Viewport() (width, height int)
}

// StaticHost is a fixed-size Host.
type StaticHost struct {
	ID     string
	Width  int
	Height int
}

func (h StaticHost) HostID() string { return h.ID }

func (h StaticHost) Viewport() (int, int) { return h.Width, h.Height }
