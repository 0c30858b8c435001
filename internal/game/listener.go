package game

// EnsureSingleAudioListener leaves exactly one listener enabled and returns it.
//
// The listener attached to preferred wins when present. Otherwise the first
// enabled listener is kept, and failing that the first listener. Returns nil
// when listeners is empty.
func EnsureSingleAudioListener(listeners []*AudioListener, preferred *Camera) *AudioListener {
	if len(listeners) == 0 {
		return nil
	}

	var chosen *AudioListener
	if preferred != nil {
		for _, l := range listeners {
			if l.Camera == preferred {
				chosen = l
				break
			}
		}
	}
	if chosen == nil {
		for _, l := range listeners {
			if l.Enabled {
				chosen = l
				break
			}
		}
	}
	if chosen == nil {
		chosen = listeners[0]
	}

	for _, l := range listeners {
		l.Enabled = l == chosen
	}
	return chosen
}
