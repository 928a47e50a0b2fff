package fitz

// Page is a source of drawing operations, such as a parsed document
// page. Run issues the page's content on dev transformed by ctm and
// should stop early when cookie is aborted.
type Page interface {
	Bounds() Rect
	Run(dev Device, ctm Matrix, cookie *Cookie) error
}

// NewDisplayListFromPage records page into a new, sealed display list.
func NewDisplayListFromPage(page Page, opts ...ListOption) (*DisplayList, error) {
	return NewDisplayListFromPageWithCookie(page, nil, opts...)
}

// NewDisplayListFromPageWithCookie is like NewDisplayListFromPage but
// passes cookie to the page. An aborted recording is still returned; it
// holds whatever the page produced before stopping.
func NewDisplayListFromPageWithCookie(page Page, cookie *Cookie, opts ...ListOption) (*DisplayList, error) {
	const op = "load page"
	mediabox := page.Bounds()
	if !mediabox.IsValid() {
		return nil, newError(KindInvalidArgument, op, nil, "invalid page bounds %v", mediabox)
	}
	ctx, capacity, err := resolveListOptions(op, opts)
	if err != nil {
		return nil, err
	}

	list := adoptRecording(newRecording(mediabox, ctx, capacity))
	dev := NewListDevice(list)
	err = page.Run(dev, Identity(), cookie)
	_ = dev.Close()
	if err != nil {
		_ = list.Close()
		return nil, wrapRender(op, err)
	}
	if cookie.Aborted() {
		cookie.Incomplete.Store(true)
	}
	return list, nil
}
