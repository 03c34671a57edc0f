package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory("")
	ctx := context.Background()

	_, err := c.Get(ctx, ConfigKey("1"))
	assert.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, ConfigKey("1"), `{"a":1}`, 0))

	v, err := c.Get(ctx, ConfigKey("1"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)
}

func TestMemory_TTLExpiry(t *testing.T) {
	c := NewMemory("")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, GuildKey("9"), "v", 20*time.Millisecond))

	v, err := c.Get(ctx, GuildKey("9"))
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	time.Sleep(40 * time.Millisecond)

	_, err = c.Get(ctx, GuildKey("9"))
	assert.True(t, IsNotFound(err))
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemory("p")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, ConfigKey("7"), "x", 0))
	require.NoError(t, c.Delete(ctx, ConfigKey("7")))

	_, err := c.Get(ctx, ConfigKey("7"))
	assert.True(t, IsNotFound(err))
}

func TestMemory_Stats(t *testing.T) {
	c := NewMemory("")
	ctx := context.Background()

	_ = c.Set(ctx, ConfigKey("1"), "a", 0)
	_, _ = c.Get(ctx, ConfigKey("1"))
	_, _ = c.Get(ctx, ConfigKey("2"))

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", st.Driver)
	assert.EqualValues(t, 1, st.Keys)
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 1, st.Misses)
}

func TestKeys_NoCrossKindCollision(t *testing.T) {
	// Un mismo identificador numérico en kinds distintos produce keys
	// distintas por construcción.
	cfg := ConfigKey("123")
	guild := GuildKey("123")
	member := MemberKey("123", "456")

	assert.NotEqual(t, cfg.String(), guild.String())
	assert.NotEqual(t, guild.String(), member.String())

	assert.Equal(t, "config:123", cfg.String())
	assert.Equal(t, "guild:123", guild.String())
	assert.Equal(t, "member:123:456", member.String())
}

func TestNew_DriverSelection(t *testing.T) {
	c, err := New(Config{Driver: "memory", Prefix: "t"})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}
