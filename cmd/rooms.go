package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Rooms lists the rooms owned by the caller.
func Rooms(ctx context.Context, c *cobra.Command) error {
	directory := newDirectory()

	listed, err := directory.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("directory.ListRooms: %w", err)
	}

	if len(listed) == 0 {
		fmt.Println("no rooms")
		return nil
	}

	for _, room := range listed {
		fmt.Printf("%s  %s (created %s)\n", room.Key, room.Name, room.CreatedAt)
	}

	return nil
}

// CreateRoom creates a room through the directory and names it on the
// realtime channel, so the first state push already carries the meta.
func CreateRoom(ctx context.Context, c *cobra.Command, name string) error {
	directory := newDirectory()

	room, err := directory.CreateRoom(ctx, name)
	if err != nil {
		return fmt.Errorf("directory.CreateRoom: %w", err)
	}

	client := newClient(ctx)
	defer client.Registry().Dispose(room.Key)

	if err := client.SetMeta(ctx, room.Key, room.Name); err != nil {
		return fmt.Errorf("client.SetMeta: %w", err)
	}

	// Wait for the first state push so the queued setRoomMeta is flushed
	// before the connection is torn down.
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.RoomState(waitCtx, room.Key); err != nil {
		return fmt.Errorf("client.RoomState: %w", err)
	}

	fmt.Printf("created room %s (%s)\n", room.Key, room.Name)
	return nil
}
