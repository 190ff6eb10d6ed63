package parsers

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/helmcrest/dispatch"
)

type durationParser[C any] struct{}

// Duration parses a single token with time.ParseDuration semantics, e.g.
// "90s" or "1h30m".
func Duration[C any]() dispatch.ArgumentParser[C] {
	return durationParser[C]{}
}

func (durationParser[C]) Parse(_ *dispatch.Context[C], in *dispatch.Input) (any, error) {
	tok := in.ReadString()
	if tok == "" {
		return nil, fmt.Errorf("expected a duration")
	}
	d, err := time.ParseDuration(tok)
	if err != nil {
		return nil, fmt.Errorf("%q is not a duration", tok)
	}
	return d, nil
}

type uuidParser[C any] struct{}

// UUID parses a single token as an RFC 4122 UUID.
func UUID[C any]() dispatch.ArgumentParser[C] {
	return uuidParser[C]{}
}

func (uuidParser[C]) Parse(_ *dispatch.Context[C], in *dispatch.Input) (any, error) {
	tok := in.ReadString()
	id, err := uuid.Parse(tok)
	if err != nil {
		return nil, fmt.Errorf("%q is not a UUID", tok)
	}
	return id, nil
}
