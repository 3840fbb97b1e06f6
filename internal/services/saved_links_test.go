package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	repos "github.com/yungbote/sotfinder-backend/internal/data/repos/savedlink"
	"github.com/yungbote/sotfinder-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sotfinder-backend/internal/domain/savedlink"
)

func TestSavedLinkService_SaveAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewSavedLinkService(testutil.Logger(t), repos.NewSavedLinkRepo(testutil.DB(t), testutil.Logger(t)))

	_, err := svc.Save(ctx, types.SavedLink{Title: " Go docs ", URL: "https://go.dev/doc/", IsOfficial: true})
	require.NoError(t, err)
	_, err = svc.Save(ctx, types.SavedLink{Title: "Go docs", URL: "https://go.dev/doc/", IsOfficial: true, Confidence: 0.8})
	require.NoError(t, err)

	links, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "Go docs", links[0].Title)
	require.Equal(t, 0.8, links[0].Confidence)
}

func TestSavedLinkService_RejectsBadURL(t *testing.T) {
	ctx := context.Background()
	svc := NewSavedLinkService(testutil.Logger(t), repos.NewSavedLinkRepo(testutil.DB(t), testutil.Logger(t)))

	for _, raw := range []string{"", "   ", "go.dev/doc", "ftp://go.dev/doc", "https://"} {
		_, err := svc.Save(ctx, types.SavedLink{URL: raw})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("Save(%q): expected ErrValidation, got %v", raw, err)
		}
	}
	links, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, links)
}
