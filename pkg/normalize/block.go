package normalize

// BlockType discriminates the content block variants.
type BlockType string

const (
	BlockText  BlockType = "text"
	BlockImage BlockType = "image"

	// BlockDiagnostic is a text-shaped block carrying a recoverable
	// failure instead of a real result. It shares the text wire shape
	// but is distinguishable in-process so tests and metrics can count
	// failures separately.
	BlockDiagnostic BlockType = "diagnostic"
)

// Block is the unit of normalized output. Ordering within a sequence is
// significant: it mirrors pod and subpod order.
type Block struct {
	Type     BlockType
	Text     string
	Data     []byte
	MIMEType string
}

func TextBlock(text string) Block {
	return Block{Type: BlockText, Text: text}
}

func ImageBlock(data []byte, mimeType string) Block {
	return Block{Type: BlockImage, Data: data, MIMEType: mimeType}
}

func DiagnosticBlock(text string) Block {
	return Block{Type: BlockDiagnostic, Text: text}
}

// IsDiagnostic reports whether the block represents a recoverable
// failure rather than a true result.
func (b Block) IsDiagnostic() bool {
	return b.Type == BlockDiagnostic
}
