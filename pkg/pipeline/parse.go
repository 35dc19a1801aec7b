package pipeline

import (
	"context"

	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/errors"
	"github.com/erdraw/erdraw/pkg/schema"
)

// Parse derives the ER model from the configured source. For "mysql" input
// the SQL is parsed into tables and collapsed into a Chen model; for "json"
// input the source is decoded directly. A pre-built opts.Model short-circuits
// both.
func Parse(ctx context.Context, opts Options) (er.Model, []string, error) {
	if err := opts.ValidateForParse(); err != nil {
		return er.Model{}, nil, err
	}
	if err := ctx.Err(); err != nil {
		return er.Model{}, nil, err
	}

	if opts.Model != nil {
		return *opts.Model, nil, nil
	}

	switch opts.Format {
	case FormatInputMySQL:
		tables, warnings := schema.Parse(opts.Source)
		if len(tables) == 0 {
			return er.Model{}, warnings, errors.New(errors.ErrCodeInvalidInput,
				"no CREATE TABLE statements found in input")
		}
		model := schema.BuildModel(tables)
		opts.Logger.Debug("parsed DDL",
			"tables", len(tables),
			"entities", len(model.Entities),
			"relationships", len(model.Relationships),
			"warnings", len(warnings))
		return model, warnings, nil

	case FormatInputJSON:
		model, err := er.UnmarshalModel([]byte(opts.Source))
		if err != nil {
			return er.Model{}, nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode model JSON")
		}
		return model, nil, nil
	}

	return er.Model{}, nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported input format: %s", opts.Format)
}
