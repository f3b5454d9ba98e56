package errors

import (
	std "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorFormat(t *testing.T) {
	err := Newf(CodeDuplicateName, "duplicate qualified name %q", "pkg.a.Base")
	assert.Contains(t, err.Error(), "DUPLICATE_NAME")
	assert.Contains(t, err.Error(), "pkg.a.Base")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(cause, CodeParseError, "parse failed")
	require.True(t, std.Is(err, cause))
	assert.True(t, IsCode(err, CodeParseError))
	assert.False(t, IsCode(err, CodeDuplicateName))
}

func TestWithContext(t *testing.T) {
	var de *DomainError
	err := New(CodeParseError, "parse failed")
	require.True(t, std.As(err, &de))
	de.WithContext(CtxPath, "pkg/a.py").WithContext(CtxLine, 12)
	assert.Contains(t, de.Error(), "pkg/a.py")
}
