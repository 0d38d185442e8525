package common

// Key codes for the viewer's keyboard commands. These values match GLFW key
// codes, which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyA = 65 // cycle animation
	KeyB = 66 // toggle bounding outlines
	KeyC = 67 // clear the targeted slot
	KeyF = 70 // fill empty grid slots
	KeyG = 71 // toggle single/grid mode
	KeyL = 76 // toggle loop
	KeyS = 83 // cycle skin
	KeyX = 88 // clear all slots

	KeySpace = 32  // play/pause
	KeyEsc   = 256 // close the window (GLFW)
)
