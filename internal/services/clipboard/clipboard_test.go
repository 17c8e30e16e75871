package clipboard

import (
	"errors"
	"testing"
)

func TestServiceCopy(t *testing.T) {
	writeFailure := errors.New("xclip exited with status 1")

	testCases := []struct {
		name          string
		unsupported   bool
		writeError    error
		expectedError error
		expectWrite   bool
	}{
		{
			name:        "writes_text",
			expectWrite: true,
		},
		{
			name:          "reports_unavailable_clipboard",
			unsupported:   true,
			expectedError: ErrUnavailable,
		},
		{
			name:          "wraps_write_failure",
			writeError:    writeFailure,
			expectedError: writeFailure,
			expectWrite:   true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var written []string
			service := &Service{
				unsupported: testCase.unsupported,
				writeAll: func(text string) error {
					written = append(written, text)
					return testCase.writeError
				},
			}
			copyError := service.Copy(".. _cmd-tool:")
			if testCase.expectedError == nil && copyError != nil {
				t.Fatalf("unexpected error: %v", copyError)
			}
			if testCase.expectedError != nil && !errors.Is(copyError, testCase.expectedError) {
				t.Fatalf("expected %v, got %v", testCase.expectedError, copyError)
			}
			if testCase.expectWrite && (len(written) != 1 || written[0] != ".. _cmd-tool:") {
				t.Fatalf("expected one write of the text, got %v", written)
			}
			if !testCase.expectWrite && len(written) != 0 {
				t.Fatalf("expected no write, got %v", written)
			}
		})
	}
}

func TestNewServiceUsesSystemClipboard(t *testing.T) {
	service := NewService()
	if service.writeAll == nil {
		t.Fatalf("expected a clipboard writer")
	}
}
