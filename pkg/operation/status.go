package operation

import (
	"context"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Status lists the files the next pass would relocate.
// Nothing is written, not even the records file.
func (o *operator) Status(ctx context.Context) ([]PendingFile, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("job", o.name).Msg("checking status")

	set, err := o.LoadRecordSet(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := o.scan(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]PendingFile, 0, len(entries))
	for _, e := range entries {
		if e.ignored != "" || set.Contains(e.name) {
			continue
		}

		mime, err := o.detect(e.path)
		if err != nil {
			return nil, errors.Errorf("detecting type of %s: %w", e.name, err)
		}

		pending = append(pending, PendingFile{
			Name: e.name,
			Size: e.info.Size(),
			MIME: mime,
		})
	}

	logger.Debug().Str("job", o.name).Int("pending", len(pending)).Msg("status checked")
	return pending, nil
}

func (o *operator) detect(path string) (string, error) {
	f, err := o.fs.Open(path)
	if err != nil {
		return "", errors.Errorf("opening file: %w", err)
	}
	defer f.Close()

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return "", errors.Errorf("reading file header: %w", err)
	}
	return mime.String(), nil
}
