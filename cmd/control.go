package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/arthurdotwork/songroom/internal/domain"
	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// Control is the interactive guest controller for a room.
func Control(ctx context.Context, c *cobra.Command, roomID string) error {
	client := newClient(ctx)
	defer client.Registry().Dispose(roomID)

	if _, ok := client.GuestProfile(ctx, roomID); !ok {
		prompt := promptui.Prompt{Label: "Your name"}
		name, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("prompt.Run: %w", err)
		}

		if err := client.SaveGuestProfile(ctx, roomID, domain.GuestProfile{Name: name}); err != nil {
			return fmt.Errorf("client.SaveGuestProfile: %w", err)
		}
	}

	for {
		action := promptui.Select{
			Label: "Action",
			Items: []string{"add song", "play next", "skip", "move song", "remove song", "rename room", "react", "show queue", "quit"},
		}

		_, choice, err := action.Run()
		if err != nil {
			return fmt.Errorf("action.Run: %w", err)
		}

		switch choice {
		case "add song":
			err = addSong(ctx, client, roomID)
		case "play next":
			err = withPickedSong(ctx, client, roomID, func(songID string) error {
				return client.SetNowPlaying(ctx, roomID, songID)
			})
		case "skip":
			err = client.SkipToNext(ctx, roomID)
		case "move song":
			err = moveSong(ctx, client, roomID)
		case "remove song":
			err = withPickedSong(ctx, client, roomID, func(songID string) error {
				return client.RemoveSong(ctx, roomID, songID)
			})
		case "rename room":
			err = renameRoom(ctx, client, roomID)
		case "react":
			err = client.BroadcastReaction(ctx, roomID, "🎉")
		case "show queue":
			err = showQueue(ctx, client, roomID)
		case "quit":
			return nil
		}

		if err != nil {
			return err
		}
	}
}

func addSong(ctx context.Context, client *domain.Client, roomID string) error {
	title, err := (&promptui.Prompt{Label: "Title"}).Run()
	if err != nil {
		return fmt.Errorf("prompt.Run: %w", err)
	}

	artist, err := (&promptui.Prompt{Label: "Artist"}).Run()
	if err != nil {
		return fmt.Errorf("prompt.Run: %w", err)
	}

	_, position, err := (&promptui.Select{Label: "Position", Items: []string{"append", "next"}}).Run()
	if err != nil {
		return fmt.Errorf("position.Run: %w", err)
	}

	song := domain.Song{
		ID:     uuid.NewString(),
		Title:  title,
		Artist: artist,
	}

	return client.AddSong(ctx, roomID, song, domain.InsertPosition(position))
}

func withPickedSong(ctx context.Context, client *domain.Client, roomID string, apply func(songID string) error) error {
	view, err := currentView(ctx, client, roomID)
	if err != nil {
		return err
	}

	if len(view.Upcoming) == 0 {
		fmt.Println("queue is empty")
		return nil
	}

	items := make([]string, len(view.Upcoming))
	for i, song := range view.Upcoming {
		items[i] = fmt.Sprintf("%s - %s", song.Title, song.Artist)
	}

	idx, _, err := (&promptui.Select{Label: "Song", Items: items}).Run()
	if err != nil {
		return fmt.Errorf("pick.Run: %w", err)
	}

	return apply(view.Upcoming[idx].ID)
}

func moveSong(ctx context.Context, client *domain.Client, roomID string) error {
	return withPickedSong(ctx, client, roomID, func(songID string) error {
		raw, err := (&promptui.Prompt{Label: "New position"}).Run()
		if err != nil {
			return fmt.Errorf("prompt.Run: %w", err)
		}

		target, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("strconv.Atoi: %w", err)
		}

		return client.MoveSong(ctx, roomID, songID, target)
	})
}

func renameRoom(ctx context.Context, client *domain.Client, roomID string) error {
	name, err := (&promptui.Prompt{Label: "Room name"}).Run()
	if err != nil {
		return fmt.Errorf("prompt.Run: %w", err)
	}

	return client.SetMeta(ctx, roomID, name)
}

func showQueue(ctx context.Context, client *domain.Client, roomID string) error {
	view, err := currentView(ctx, client, roomID)
	if err != nil {
		return err
	}

	render(view)
	return nil
}

func currentView(ctx context.Context, client *domain.Client, roomID string) (domain.View, error) {
	state, err := client.RoomState(ctx, roomID)
	if err != nil {
		return domain.View{}, fmt.Errorf("client.RoomState: %w", err)
	}

	return domain.Project(state), nil
}
