package store

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// Valkey stores the encoded list under a single list key
type Valkey struct {
	client valkey.Client
	key    string
}

// NewValkey connects to a Valkey (Redis-compatible) server
func NewValkey(addr, key string) (*Valkey, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Valkey{client: client, key: key}, nil
}

// Save replaces the list in a MULTI/EXEC block
func (v *Valkey) Save(ctx context.Context, encoded []string) error {
	return v.client.Dedicated(func(c valkey.DedicatedClient) error {
		cmds := valkey.Commands{
			c.B().Multi().Build(),
			c.B().Del().Key(v.key).Build(),
		}
		if len(encoded) > 0 {
			cmds = append(cmds, c.B().Rpush().Key(v.key).Element(encoded...).Build())
		}
		cmds = append(cmds, c.B().Exec().Build())

		for _, resp := range c.DoMulti(ctx, cmds...) {
			if err := resp.Error(); err != nil {
				return fmt.Errorf("valkey save: %w", err)
			}
		}
		return nil
	})
}

// Load returns the list contents in order
func (v *Valkey) Load(ctx context.Context) ([]string, error) {
	encoded, err := v.client.Do(ctx, v.client.B().Lrange().Key(v.key).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("valkey load: %w", err)
	}
	return encoded, nil
}

// Close releases the client
func (v *Valkey) Close() {
	v.client.Close()
}
