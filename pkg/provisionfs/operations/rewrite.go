package operations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
)

// RewriteTokenOperation replaces every standalone occurrence of a fixed token,
// such as the default port mapping of an orchestration descriptor. An
// occurrence glued to a digit on either side is part of a longer number and
// is left alone, so a replacement that ends with the token ("13838:80" for
// "3838:80") is not rewritten again on the next run.
type RewriteTokenOperation struct {
	*BaseOperation
	token       string
	replacement string
}

// NewRewriteTokenOperation creates a token rewrite for path.
func NewRewriteTokenOperation(id core.OperationID, path, token, replacement string) *RewriteTokenOperation {
	op := &RewriteTokenOperation{
		BaseOperation: NewBaseOperation(id, "rewrite_token", path),
		token:         token,
		replacement:   replacement,
	}
	op.setDetail("token", token)
	op.setDetail("replacement", replacement)
	return op
}

// Validate rejects an empty token.
func (op *RewriteTokenOperation) Validate() error {
	if err := op.BaseOperation.Validate(); err != nil {
		return err
	}
	if op.token == "" {
		return &core.ValidationError{
			OperationID:   op.ID(),
			OperationDesc: op.Describe(),
			Reason:        "token cannot be empty",
		}
	}
	return nil
}

// Execute rewrites the token in place when present.
func (op *RewriteTokenOperation) Execute(ctx context.Context, fsys filesystem.FileSystem) core.OperationResult {
	info, err := fsys.Stat(op.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return op.result(core.KindSkippedMissingFile, "file not found")
	}
	if err != nil {
		return op.failure("stat file", err)
	}

	if op.token == op.replacement {
		return op.result(core.KindAlreadyPatched, fmt.Sprintf("%q is the default, nothing to rewrite", op.token))
	}

	data, err := fsys.ReadFile(op.Path())
	if err != nil {
		return op.failure("read file", err)
	}
	content := string(data)

	matches := standaloneIndexes(content, op.token)
	if len(matches) == 0 {
		if len(standaloneIndexes(content, op.replacement)) > 0 {
			return op.result(core.KindAlreadyPatched, fmt.Sprintf("%q already present", op.replacement))
		}
		return op.result(core.KindSkippedNotFound, fmt.Sprintf("%q not found", op.token))
	}

	var sb strings.Builder
	last := 0
	for _, i := range matches {
		sb.WriteString(content[last:i])
		sb.WriteString(op.replacement)
		last = i + len(op.token)
	}
	sb.WriteString(content[last:])

	if err := fsys.WriteFile(op.Path(), []byte(sb.String()), info.Mode().Perm()); err != nil {
		return op.failure("write file", err)
	}
	return op.result(core.KindPatched, fmt.Sprintf("rewrote %d occurrence(s) of %q to %q", len(matches), op.token, op.replacement))
}

// standaloneIndexes returns the non-overlapping offsets of token in content
// that are not preceded or followed by an ASCII digit.
func standaloneIndexes(content, token string) []int {
	if token == "" {
		return nil
	}
	var out []int
	for from := 0; from <= len(content)-len(token); {
		i := strings.Index(content[from:], token)
		if i < 0 {
			break
		}
		i += from
		end := i + len(token)
		if (i == 0 || !isDigit(content[i-1])) && (end == len(content) || !isDigit(content[end])) {
			out = append(out, i)
			from = end
			continue
		}
		from = i + 1
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
