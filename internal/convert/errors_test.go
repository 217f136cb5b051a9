// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/ebook-converter/pkg/types"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{
			err:  &Error{Kind: KindUnsupportedInputFormat, Detail: `unsupported format ".txt"`},
			want: `input format not supported: unsupported format ".txt"`,
		},
		{
			err:  &Error{Kind: KindUnsupportedPair, Source: types.FormatMOBI, Target: types.FormatAZW3},
			want: "conversion from mobi to azw3 is not supported",
		},
		{
			err:  &Error{Kind: KindConversionFailed, Source: types.FormatEPUB, Target: types.FormatMOBI, Detail: "bad zip"},
			want: "converting epub to mobi: bad zip",
		},
		{
			err:  invalidRequest("output name must not be empty"),
			want: "invalid request: output name must not be empty",
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorIsAndKindOf(t *testing.T) {
	cause := errors.New("exit status 1")
	err := fmt.Errorf("handling upload: %w", &Error{Kind: KindConversionFailed, Err: cause})

	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrUnsupportedPair)
	assert.Equal(t, KindConversionFailed, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(cause))
}

func TestValidateOutputName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{in: "book1", want: "book1"},
		{in: "  The Time Machine  ", want: "The Time Machine"},
		{in: "", wantErr: "must not be empty"},
		{in: "\t", wantErr: "must not be empty"},
		{in: "a/b", wantErr: "path separators"},
		{in: `a\b`, wantErr: "path separators"},
		{in: "a\x00b", wantErr: "control characters"},
		{in: "..", wantErr: `".."`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateOutputName(tt.in)
			if tt.wantErr != "" {
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErr)
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
