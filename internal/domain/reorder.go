package domain

// The reorder engine translates UI-relative intents, which only ever speak
// in upcoming-queue indexes, into the full ordered unplayed-id list sent to
// the service. Sending the whole list instead of a delta keeps concurrent
// edits from different clients safe: the last applied list simply wins.

func upcomingSongs(playlist []Song) []Song {
	upcoming := make([]Song, 0, len(playlist))
	for _, song := range playlist {
		if !song.Played() {
			upcoming = append(upcoming, song)
		}
	}

	return upcoming
}

func indexOf(songs []Song, songID string) int {
	for i, song := range songs {
		if song.ID == songID {
			return i
		}
	}

	return -1
}

func songIDs(songs []Song) []string {
	ids := make([]string, len(songs))
	for i, song := range songs {
		ids[i] = song.ID
	}

	return ids
}

// MovedUpcomingIDs computes the unplayed-id order after moving songID to the
// given upcoming slot. The target clamps to [0, len-1]. It reports false when
// nothing should be sent: the song is absent (already played or removed) or
// the move resolves to no change.
func MovedUpcomingIDs(playlist []Song, songID string, target int) ([]string, bool) {
	upcoming := upcomingSongs(playlist)

	idx := indexOf(upcoming, songID)
	if idx == -1 {
		return nil, false
	}

	clamped := max(0, min(len(upcoming)-1, target))
	if clamped == idx {
		return nil, false
	}

	reordered := make([]Song, 0, len(upcoming))
	reordered = append(reordered, upcoming[:idx]...)
	reordered = append(reordered, upcoming[idx+1:]...)
	reordered = append(reordered[:clamped], append([]Song{upcoming[idx]}, reordered[clamped:]...)...)

	return songIDs(reordered), true
}

// FrontedUpcomingIDs bumps songID to the head of the upcoming queue, which
// makes it the now-playing item. Same suppression rules as MovedUpcomingIDs.
func FrontedUpcomingIDs(playlist []Song, songID string) ([]string, bool) {
	return MovedUpcomingIDs(playlist, songID, 0)
}

// CurrentSong returns the now-playing item, the head of the upcoming queue.
func CurrentSong(playlist []Song) (Song, bool) {
	for _, song := range playlist {
		if !song.Played() {
			return song, true
		}
	}

	return Song{}, false
}
