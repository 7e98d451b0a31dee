package offline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/bazi-report/internal/domain/narrative"
)

func TestNarratorProducesEveryCatalogueSection(t *testing.T) {
	stream, err := NewNarrator().StreamText(context.Background(), narrative.Request{})
	require.NoError(t, err)

	var b strings.Builder
	for {
		part, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		b.WriteString(part)
	}

	sections := narrative.ParseSections(b.String())
	require.Empty(t, narrative.MissingKeys(sections))
	require.NotNil(t, sections[1].Table)
}
