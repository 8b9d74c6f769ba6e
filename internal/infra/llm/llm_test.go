package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vietddude/autodash/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want domain.ErrorKind
	}{
		{errors.New("429 You exceeded your current quota, please check your plan"), domain.KindQuota},
		{errors.New("Error 429, Message: Resource has been exhausted, Status: RESOURCE_EXHAUSTED"), domain.KindQuota},
		{errors.New("response was blocked due to SAFETY"), domain.KindSafety},
		{fmt.Errorf("%w: PROHIBITED_CONTENT", ErrBlocked), domain.KindSafety},
		{errors.New("connection reset by peer"), domain.KindNetwork},
		{context.DeadlineExceeded, domain.KindNetwork},
		{errors.New("500 Internal Server Error"), domain.KindNetwork},
		{errors.New("error, status code: 429, status: 429 Too Many Requests, message: slow down"), domain.KindQuota},
		{errors.New("quota exceeded while the prompt was blocked"), domain.KindQuota},
		{errors.New("upstream reset on request 84290"), domain.KindNetwork},
		{errors.New("Error 503, Message: id 1429 unavailable"), domain.KindNetwork},
	}

	for _, tt := range tests {
		got := Classify("genai:test", tt.err)
		assert.Equal(t, tt.want, domain.KindOf(got), tt.err.Error())
		assert.ErrorIs(t, got, tt.err)
	}
}

func TestClassify_KeepsDomainErrors(t *testing.T) {
	in := domain.Errorf(domain.KindConfig, "llm", "no key")
	assert.Same(t, in, Classify("llm", in))
	assert.Nil(t, Classify("llm", nil))
}

func TestClassify_PermanentKinds(t *testing.T) {
	assert.True(t, domain.IsPermanent(Classify("x", errors.New("quota exceeded"))))
	assert.True(t, domain.IsPermanent(Classify("x", errors.New("blocked"))))
	assert.False(t, domain.IsPermanent(Classify("x", errors.New("EOF"))))
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "nope", APIKey: "k"})
	assert.Error(t, err)
}
