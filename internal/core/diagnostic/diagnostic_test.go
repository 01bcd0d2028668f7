// Package diagnostic_test contains tests for the diagnostic package.
package diagnostic_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/diagnostic"
	"github.com/nightconcept/refgen-go/internal/core/domain"
)

func TestString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		d    diagnostic.Diagnostic
		want string
	}{
		{
			name: "bare",
			d:    diagnostic.Diagnostic{Severity: diagnostic.SeverityError, Code: "RG001"},
			want: "error RG001",
		},
		{
			name: "file line and column",
			d: diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError, Code: "RG001",
				File: "MyLib.csproj", Line: 12, Column: 5, Message: "boom",
			},
			want: "MyLib.csproj(12,5): error RG001: boom",
		},
		{
			name: "file and line",
			d:    diagnostic.Diagnostic{Severity: diagnostic.SeverityWarning, Code: "RG002", File: "a.nuspec", Line: 3},
			want: "a.nuspec(3): warning RG002",
		},
		{
			name: "file only",
			d:    diagnostic.Diagnostic{Severity: diagnostic.SeverityError, Code: "RG003", File: "a.nuspec", Message: "m"},
			want: "a.nuspec: error RG003: m",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestFromError(t *testing.T) {
	t.Parallel()

	platform := diagnostic.FromError(fmt.Errorf("probing: %w", domain.ErrUnsupportedPlatform))
	assert.True(t, platform.IsWarning())
	assert.Equal(t, diagnostic.CodeClassicPortable, platform.Code)

	unsupported := diagnostic.FromError(zerr.With(fmt.Errorf("%w: net45", domain.ErrUnsupportedFramework), "framework", "net45"))
	assert.False(t, unsupported.IsWarning())
	assert.Equal(t, diagnostic.CodeUnknownTargetFramework, unsupported.Code)

	generic := diagnostic.FromError(zerr.With(fmt.Errorf("%w: no lock file", domain.ErrConfiguration), "path", "src/MyLib/MyLib.csproj"))
	assert.Equal(t, diagnostic.CodeFailure, generic.Code)
	assert.Equal(t, "src/MyLib/MyLib.csproj", generic.File)
	assert.Contains(t, generic.Message, "no lock file")

	nested := fmt.Errorf("project a: %w", zerr.With(zerr.With(errors.New("inner"), "path", "x.dll"), "framework", "dotnet"))
	assert.Equal(t, "x.dll", diagnostic.FromError(nested).File)
	assert.Empty(t, diagnostic.FromError(errors.New("plain")).File)
}

func TestPrint(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	diagnostic.Print(&buf, diagnostic.Diagnostic{Severity: diagnostic.SeverityWarning, Code: "RG002", Message: "m"})
	assert.Equal(t, "warning RG002: m\n", buf.String())
}
