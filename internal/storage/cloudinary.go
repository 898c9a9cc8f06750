package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Cloudinary stores files in a Cloudinary account. Handles have the form
// "<resource type>:<public id>" because destroy needs both.
type Cloudinary struct {
	client cloudinaryAPI
}

func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)

	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}

	return &Cloudinary{client: &cld.Upload}, nil
}

func (c *Cloudinary) Put(ctx context.Context, in PutInput) (*Object, error) {
	if err := CheckAllowed(in.FileName); err != nil {
		return nil, err
	}

	resourceType := resourceTypeFor(in.FileName)

	params := uploader.UploadParams{
		PublicID:     publicIDFor(in.FileName, resourceType),
		Folder:       in.Folder,
		ResourceType: resourceType,
	}

	if resourceType == "image" {
		params.AllowedFormats = api.CldAPIArray(AllowedExtensions)
	}

	res, err := c.client.Upload(ctx, in.Body, params)

	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}

	if res.Error.Message != "" {
		if strings.Contains(strings.ToLower(res.Error.Message), "format") {
			return nil, fmt.Errorf("%w: %s", ErrDisallowedType, res.Error.Message)
		}

		return nil, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}

	return &Object{
		URL:    res.SecureURL,
		Handle: res.ResourceType + ":" + res.PublicID,
	}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, handle string) error {
	resourceType, publicID, ok := strings.Cut(handle, ":")

	if !ok || publicID == "" {
		return fmt.Errorf("malformed cloudinary handle %q", handle)
	}

	res, err := c.client.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
		Invalidate:   api.Bool(true),
	})

	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}

	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}

	switch res.Result {
	case "ok":
		return nil
	case "not found":
		return ErrNotFound
	default:
		return errors.New("cloudinary destroy: unexpected result " + res.Result)
	}
}

// publicIDFor keeps the original base name readable and makes it unique.
// Raw resources keep their extension since Cloudinary does not append one.
func publicIDFor(fileName, resourceType string) string {
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)

	id := base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	if resourceType == "raw" {
		id += "." + Extension(fileName)
	}

	return id
}

// PDFs are delivered as images by Cloudinary; office documents are raw.
func resourceTypeFor(fileName string) string {
	switch Extension(fileName) {
	case "jpg", "jpeg", "png", "pdf":
		return "image"
	default:
		return "raw"
	}
}
