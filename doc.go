// Package fitz records page content once and replays it many times.
//
// # Overview
//
// A DisplayList stores the drawing operations of a page (paths, text,
// images, shadings, clips and transparency groups) as an immutable
// recording. The recording can then be rasterized to a Pixmap, turned into
// a TextPage, searched for text, converted to an Image, or replayed into
// any Device, as often as needed and from many goroutines at once.
//
// # Quick Start
//
//	import "github.com/gogpu/fitz"
//
//	list, _ := fitz.NewDisplayList(fitz.Rect{X1: 200, Y1: 100})
//	defer list.Close()
//
//	dev := fitz.NewListDevice(list)
//	text := fitz.NewText()
//	text.ShowString(fitz.DefaultFont(), fitz.TextMatrix(24, 10, 50), "Hello")
//	_ = dev.FillText(text, fitz.Identity(), fitz.Black, 1)
//	_ = dev.Close()
//
//	pix, _ := list.ToPixmap(fitz.Scale(2, 2), fitz.DeviceRGB, false)
//	_ = pix.SavePNG("hello.png")
//
//	hits, _ := list.Search("ell", 0)
//
// # Devices
//
// A Device receives drawing operations. The package provides:
//   - ListDevice: records into a DisplayList
//   - DrawDevice: rasterizes into a Pixmap
//   - TextDevice: extracts characters into a TextPage
//   - BBoxDevice: measures painted bounds
//   - TraceDevice: prints every call
//
// # Coordinate System
//
// Page and device space have the origin at the top-left with y growing
// down. Font units have y growing up; text matrices flip them (see
// TextMatrix). Images occupy the unit square of their own space.
//
// # Ownership
//
// Each DisplayList value is a handle owning one reference to a shared
// recording. Clone adds a handle; Close releases one. The recording is
// freed with its last reference. Handles dropped without Close are
// released by the garbage collector.
//
// # Cancellation
//
// RunWithCookie polls a Cookie before every node. Aborting the cookie
// stops the replay early without an error; NewCookieContext ties a cookie
// to a context.Context.
package fitz

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
