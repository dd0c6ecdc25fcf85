package auth

// Normalize converts a raw provider payload into the canonical profile
// shape. It is pure and never fails: absent optional fields are left
// absent rather than defaulted, producing a best-effort partial
// profile. The email order of the raw payload is preserved; downstream
// code treats the first entry as primary.
func Normalize(raw RawProfile) Profile {
	p := Profile{
		ID:          raw.ID,
		Provider:    raw.Provider,
		Username:    raw.Username,
		DisplayName: raw.DisplayName,
	}

	if len(raw.Emails) > 0 {
		emails := make([]string, 0, len(raw.Emails))
		for _, e := range raw.Emails {
			emails = append(emails, e.Value)
		}
		p.Emails = emails
	}

	if raw.AvatarURL != "" {
		p.Photos = []Photo{{Value: raw.AvatarURL}}
	}

	return p
}
