package client

import "context"

// Saver adapts Client to the two calls the autosave editor makes: it
// satisfies autosave.Saver without that package depending on this one.
type Saver struct {
	c *Client
}

// Saver returns the auto-save adapter for this client.
func (c *Client) Saver() *Saver {
	return &Saver{c: c}
}

// Update replaces the entry's content.
func (s *Saver) Update(ctx context.Context, id, content string) error {
	_, err := s.c.UpdateNooklet(ctx, id, map[string]interface{}{"content": content})
	return err
}

// Archive soft-deletes the entry.
func (s *Saver) Archive(ctx context.Context, id string) error {
	_, err := s.c.ArchiveNooklet(ctx, id)
	return err
}
