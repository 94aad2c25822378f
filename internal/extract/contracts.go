package extract

import (
	"context"

	"github.com/joseph-ayodele/personal-info-parser/internal/entity"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
)

// PersonParser turns free text into a Person.
type PersonParser interface {
	ParseText(ctx context.Context, input string) (entity.Person, error)
}

// IDDocumentParser turns a license image into an IDDocument.
type IDDocumentParser interface {
	ParseImage(ctx context.Context, img llm.Image) (entity.IDDocument, error)
}

// ImageSource resolves an image URL (http, https, s3 or data) into bytes.
type ImageSource interface {
	Fetch(ctx context.Context, rawURL string) (llm.Image, error)
}

// ObjectGetter reads an object from a bucket, bounded by maxBytes.
type ObjectGetter interface {
	Get(ctx context.Context, bucket, key string, maxBytes int64) ([]byte, string, error)
}
