package wall

import (
	"fmt"

	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/playlist"
)

// The helpers below turn adapter panics into errors.

func recovered(op string, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%s: panic: %w", op, err)
	}
	return fmt.Errorf("%s: panic: %v", op, r)
}

func mount(adapter embed.Adapter, video playlist.Video, listener embed.Listener) (handle embed.Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			handle, err = nil, recovered("mount", r)
		}
	}()
	return adapter.Mount(video, listener)
}

func unmount(adapter embed.Adapter, handle embed.Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("unmount", r)
		}
	}()
	return adapter.Unmount(handle)
}

func recreate(adapter embed.Adapter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("recreate", r)
		}
	}()
	return adapter.Recreate()
}

func status(handle embed.Handle) (s embed.Status) {
	defer func() {
		if r := recover(); r != nil {
			s = embed.Status{}
		}
	}()
	return handle.Status()
}

func togglePause(handle embed.Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("toggle pause", r)
		}
	}()
	return handle.TogglePause()
}
