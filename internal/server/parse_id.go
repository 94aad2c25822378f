package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/personal-info-parser/constants"
	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/entity"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/utils"
)

const msgParseIDRequired = "Either 'id' for lookup, image file/URL for parsing, or 'inputText' for fallback is required"

var imageURLSchemes = []string{"http", "https", "s3", "data"}

// ParseID handles POST /parse/id. Sources are tried in order: id lookup,
// uploaded image, image URL, then the text fallback.
func (s *Server) ParseID(c *gin.Context) {
	id := strings.TrimSpace(c.PostForm("id"))
	text := utils.FirstNonEmpty(c.PostForm("inputText"), c.PostForm("input_text"))
	imageURL := strings.TrimSpace(utils.FirstNonEmpty(c.PostForm("imageUrl"), c.PostForm("image_url")))

	ctx := c.Request.Context()
	logger := common.LoggerFromContext(ctx, s.logger)

	if s.lookupable(id) {
		if doc, ok := s.lookup.GetIDDocumentByID(id); ok {
			logger.Info("parse_id.lookup_hit", "id", id)
			s.writeDocument(c, constants.SourceIDLookup, doc)
			return
		}
		logger.Info("parse_id.lookup_miss", "id", id)
	}

	img, ok, err := s.uploadedImage(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok && imageURL != "" {
		v := common.NewValidator().Field("imageUrl", imageURL, common.URLScheme(imageURLSchemes...))
		if err := common.ValidateAndReturnError(v); err != nil {
			s.fail(c, err)
			return
		}
		if img, err = s.images.Fetch(ctx, imageURL); err != nil {
			s.fail(c, err)
			return
		}
		ok = true
	}
	if ok {
		doc, err := s.image.ParseImage(ctx, img)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.writeDocument(c, constants.SourceImage, doc)
		return
	}

	if strings.TrimSpace(text) == "" {
		s.badRequest(c, msgParseIDRequired)
		return
	}
	if err := validateText("inputText", text); err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.text.ParseText(ctx, text)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.writeDocument(c, constants.SourceText, entity.IDDocumentFromPerson(p))
}

// uploadedImage reads the "image" part. A missing or empty part is not an
// error; it only means the next source is tried.
func (s *Server) uploadedImage(c *gin.Context) (llm.Image, bool, error) {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return llm.Image{}, false, nil
		}
		return llm.Image{}, false, common.InvalidArgumentErrorf("invalid multipart form: %v", err)
	}
	if header.Size == 0 {
		return llm.Image{}, false, nil
	}
	if header.Size > s.maxImageBytes {
		return llm.Image{}, false, common.InvalidArgumentErrorf("image exceeds %d bytes", s.maxImageBytes)
	}

	data, err := s.readPart(header)
	if err != nil {
		return llm.Image{}, false, err
	}
	return llm.Image{Data: data, MIMEType: llm.DetectImageMIME(data, header.Filename)}, true, nil
}

func (s *Server) readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, common.InternalError("open uploaded image", err)
	}
	defer func(f multipart.File) {
		if err := f.Close(); err != nil {
			s.logger.Warn("parse_id.upload_close_error", "error", err)
		}
	}(f)

	data, err := io.ReadAll(io.LimitReader(f, s.maxImageBytes+1))
	if err != nil {
		return nil, common.InternalError("read uploaded image", err)
	}
	if int64(len(data)) > s.maxImageBytes {
		return nil, common.InvalidArgumentErrorf("image exceeds %d bytes", s.maxImageBytes)
	}
	return data, nil
}

func (s *Server) writeDocument(c *gin.Context, source constants.Source, doc entity.IDDocument) {
	doc.EnsureCollections()
	c.JSON(http.StatusOK, gin.H{"source": source, "data": doc})
}
