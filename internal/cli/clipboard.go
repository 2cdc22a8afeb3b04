package cli

import (
	"errors"
	"fmt"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/atotto/clipboard"
)

var writeClipboard = func(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if err := writeClipboard(text); err != nil {
		return fmt.Errorf("%w: copy to clipboard: %w", common.ErrExportFailed, err)
	}
	return nil
}
