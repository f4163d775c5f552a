package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSuggester struct{}

func (failingSuggester) Suggest(ctx context.Context, symptoms string) ([]string, string, error) {
	return nil, "", errors.New("analyzer offline")
}

func TestCaptureWithSuggestion(t *testing.T) {
	suggester := &StaticSuggester{
		Specializations: []string{"dermatology"},
		Summary:         "Persistent rash, moderate severity.",
	}
	in := Capture(context.Background(), Request{
		Symptoms: "itchy rash on both arms",
		Severity: "moderate",
		Duration: "2 weeks",
	}, suggester, nil)

	require.NotNil(t, in)
	assert.Equal(t, "itchy rash on both arms", in.Symptoms)
	assert.Equal(t, []string{"dermatology"}, in.Specializations)
	assert.Equal(t, "Persistent rash, moderate severity.", in.Summary)
}

func TestCaptureWithoutSymptoms(t *testing.T) {
	assert.Nil(t, Capture(context.Background(), Request{}, nil, nil))
	assert.Nil(t, Capture(context.Background(), Request{Symptoms: "   "}, nil, nil))
}

func TestCaptureSuggesterFailureDegrades(t *testing.T) {
	in := Capture(context.Background(), Request{Symptoms: "fever"}, failingSuggester{}, nil)
	require.NotNil(t, in, "suggester failures never fail the booking")
	assert.Equal(t, "fever", in.Symptoms)
	assert.Empty(t, in.Specializations)
	assert.Empty(t, in.Summary)
}

func TestCaptureWithoutSuggester(t *testing.T) {
	in := Capture(context.Background(), Request{Symptoms: "fever", Severity: "mild"}, nil, nil)
	require.NotNil(t, in)
	assert.Equal(t, "mild", in.Severity)
}
