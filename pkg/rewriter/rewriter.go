// Package rewriter paraphrases article text through a chat-completion service.
package rewriter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingAPIKey is returned when the credential variable is unset or empty.
var ErrMissingAPIKey = errors.New("API key is not set")

const systemPrompt = "You are an experienced copywriter with extensive experience in writing articles about manufacturing."

const instructionTemplate = "Rewrite the article provided below so that it's completely original with no plagiarism. " +
	"Change the order of the sections, vary the sentence length, and change the paragraph size. " +
	"Do this for every section, sentence, and paragraph. " +
	"Rewrite the conclusion to be about %s, an on-demand manufacturing platform.\n\n"

// Completer sends one system + user exchange and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// APIKeyFromEnv reads the credential from the named environment variable.
func APIKeyFromEnv(name string) (string, error) {
	key := strings.TrimSpace(os.Getenv(name))
	if key == "" {
		return "", fmt.Errorf("%w: set the %s environment variable", ErrMissingAPIKey, name)
	}
	return key, nil
}

// Rewriter turns an article into an original-sounding version of itself.
type Rewriter struct {
	completer Completer
	platform  string
}

func New(completer Completer, platform string) *Rewriter {
	return &Rewriter{completer: completer, platform: platform}
}

// Messages returns the system and user prompts for text.
func (r *Rewriter) Messages(text string) (system, user string) {
	return systemPrompt, fmt.Sprintf(instructionTemplate, r.platform) + text
}

// Rewrite makes exactly one completion call. Failures are returned as is;
// there is no retry.
func (r *Rewriter) Rewrite(ctx context.Context, text string) (string, error) {
	system, user := r.Messages(text)
	out, err := r.completer.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("failed to rewrite article: %w", err)
	}
	return strings.TrimSpace(out), nil
}
