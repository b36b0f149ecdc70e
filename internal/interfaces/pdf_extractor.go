package interfaces

import "context"

// PDFExtractor pulls plain text out of a PDF document. Implementations work
// on raw bytes because scan documents arrive as uploads or mail attachments,
// never as files already on disk.
type PDFExtractor interface {
	// ExtractText returns the text of every page concatenated in page order.
	ExtractText(ctx context.Context, content []byte) (string, error)
}
