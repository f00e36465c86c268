package domain

// View is the derived projection every consumer renders from: the upcoming
// (unplayed) songs in playlist order, with the head as the now-playing item.
type View struct {
	NowPlaying *Song
	Upcoming   []Song
}

// Project derives the view from scratch. It is stateless: consumers must
// treat the result as fully replaced on each state push, never patched.
func Project(state RoomState) View {
	upcoming := make([]Song, 0, len(state.Playlist))
	for _, song := range state.Playlist {
		if !song.Played() {
			upcoming = append(upcoming, song)
		}
	}

	view := View{Upcoming: upcoming}
	if len(upcoming) > 0 {
		head := upcoming[0]
		view.NowPlaying = &head
	}

	return view
}
