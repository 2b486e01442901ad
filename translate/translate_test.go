package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rgooch/karma-sub004/translate"
)

func TestFrom_FormatsArguments(t *testing.T) {
	assert.Equal(t, "channel fd=7 kind=disc", translate.From("channel fd=%d kind=%s", 7, "disc"))
	assert.Equal(t, "plain", translate.From("plain"))
}
