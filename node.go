package fitz

// nodeKind identifies a recorded device call.
type nodeKind uint8

const (
	nodeFillPath nodeKind = iota
	nodeStrokePath
	nodeClipPath
	nodeClipStrokePath
	nodeFillText
	nodeStrokeText
	nodeClipText
	nodeClipStrokeText
	nodeIgnoreText
	nodeFillShade
	nodeFillImage
	nodeFillImageMask
	nodeClipImageMask
	nodePopClip
	nodeBeginGroup
	nodeEndGroup
)

var nodeNames = [...]string{
	nodeFillPath:       "fill_path",
	nodeStrokePath:     "stroke_path",
	nodeClipPath:       "clip_path",
	nodeClipStrokePath: "clip_stroke_path",
	nodeFillText:       "fill_text",
	nodeStrokeText:     "stroke_text",
	nodeClipText:       "clip_text",
	nodeClipStrokeText: "clip_stroke_text",
	nodeIgnoreText:     "ignore_text",
	nodeFillShade:      "fill_shade",
	nodeFillImage:      "fill_image",
	nodeFillImageMask:  "fill_image_mask",
	nodeClipImageMask:  "clip_image_mask",
	nodePopClip:        "pop_clip",
	nodeBeginGroup:     "begin_group",
	nodeEndGroup:       "end_group",
}

func (k nodeKind) String() string {
	if int(k) < len(nodeNames) {
		return nodeNames[k]
	}
	return "unknown"
}

// cullable reports whether a node may be skipped when its bounds miss
// the replay area. Clip and group nodes must always run to keep the
// device's stacks balanced.
func (k nodeKind) cullable() bool {
	switch k {
	case nodeFillPath, nodeStrokePath, nodeFillText, nodeStrokeText, nodeIgnoreText,
		nodeFillShade, nodeFillImage, nodeFillImageMask:
		return true
	default:
		return false
	}
}

// node is one recorded device call. Referenced paths, text, stroke
// states and shades are private copies owned by the recording.
type node struct {
	kind nodeKind

	// rect is the device space extent at record time: painted bounds for
	// drawing, clip bounds for clips, the group area for groups.
	rect Rect
	ctm  Matrix

	path   *Path
	text   *Text
	stroke *StrokeState
	shade  *Shade
	image  *Image

	color    Color
	alpha    float64
	evenOdd  bool
	isolated bool
	knockout bool
}

// replay issues the node's call on dev with the node matrix followed by
// ctm.
func (n *node) replay(dev Device, ctm Matrix) error {
	m := Concat(n.ctm, ctm)
	switch n.kind {
	case nodeFillPath:
		return dev.FillPath(n.path, n.evenOdd, m, n.color, n.alpha)
	case nodeStrokePath:
		return dev.StrokePath(n.path, n.stroke, m, n.color, n.alpha)
	case nodeClipPath:
		return dev.ClipPath(n.path, n.evenOdd, m, n.rect.Transform(ctm))
	case nodeClipStrokePath:
		return dev.ClipStrokePath(n.path, n.stroke, m, n.rect.Transform(ctm))
	case nodeFillText:
		return dev.FillText(n.text, m, n.color, n.alpha)
	case nodeStrokeText:
		return dev.StrokeText(n.text, n.stroke, m, n.color, n.alpha)
	case nodeClipText:
		return dev.ClipText(n.text, m, n.rect.Transform(ctm))
	case nodeClipStrokeText:
		return dev.ClipStrokeText(n.text, n.stroke, m, n.rect.Transform(ctm))
	case nodeIgnoreText:
		return dev.IgnoreText(n.text, m)
	case nodeFillShade:
		return dev.FillShade(n.shade, m, n.alpha)
	case nodeFillImage:
		return dev.FillImage(n.image, m, n.alpha)
	case nodeFillImageMask:
		return dev.FillImageMask(n.image, m, n.color, n.alpha)
	case nodeClipImageMask:
		return dev.ClipImageMask(n.image, m, n.rect.Transform(ctm))
	case nodePopClip:
		return dev.PopClip()
	case nodeBeginGroup:
		return dev.BeginGroup(n.rect.Transform(ctm), n.isolated, n.knockout, n.alpha)
	case nodeEndGroup:
		return dev.EndGroup()
	default:
		return newError(KindRender, "run", nil, "unknown node kind %d", n.kind)
	}
}
