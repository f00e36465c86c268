package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arthurdotwork/songroom/internal/domain"
	"github.com/arthurdotwork/songroom/internal/infrastructure/runner"
	"github.com/spf13/cobra"
)

// Watch is the passive player display: it renders the projected view on
// every state push and reports reactions until the room expires or the
// context is cancelled.
func Watch(ctx context.Context, c *cobra.Command, roomID string) error {
	client := newClient(ctx)

	expired := make(chan struct{})

	viewSub := client.SubscribeView(roomID, func(view domain.View) {
		render(view)
	})
	defer viewSub.Cancel()

	reactionSub := client.SubscribeReactions(roomID, func(emoji string) {
		fmt.Printf("reaction: %s\n", emoji)
	})
	defer reactionSub.Cancel()

	expirySub := client.SubscribeExpiry(roomID, func() {
		slog.InfoContext(ctx, "room expired", "room_id", roomID)
		close(expired)
	})
	defer expirySub.Cancel()

	r := runner.New(ctx)
	r.Go(func() error {
		select {
		case <-r.Context().Done():
			return r.Context().Err()
		case <-expired:
			return nil
		}
	})

	if err := r.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("runner.Wait: %w", err)
	}

	client.Registry().Dispose(roomID)
	return nil
}

func render(view domain.View) {
	fmt.Print("\033[2J\033[H")

	if view.NowPlaying == nil {
		fmt.Println("nothing playing")
	} else {
		fmt.Printf("now playing: %s - %s (%s)\n", view.NowPlaying.Title, view.NowPlaying.Artist, view.NowPlaying.SingerName)
	}

	if len(view.Upcoming) <= 1 {
		fmt.Println("queue is empty")
		return
	}

	fmt.Println("up next:")
	for i, song := range view.Upcoming[1:] {
		fmt.Printf("  %2d. %s - %s (%s)\n", i+1, song.Title, song.Artist, song.SingerName)
	}
}
