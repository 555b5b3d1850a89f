package host

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[store]
dir = "/tmp/collectables"

[host]
batch = 16

[ledger]
minimum = "0.0001"

[[genesis]]
account = "e9e5b807-fa8b-455a-8dfa-b189d28310ff"
balance = "12.5"
`

func TestSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0600))

	conf, err := Setup(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/collectables", conf.Store.Dir)
	assert.Equal(t, 16, conf.Host.Batch)
	assert.Equal(t, DefaultInterval, conf.Host.IntervalMs)
	assert.Equal(t, "0.0001", conf.Ledger.Minimum)
	require.Len(t, conf.Genesis, 1)
	assert.Equal(t, "12.5", conf.Genesis[0].Balance)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[[genesis]]\naccount = \"bob\"\nbalance = \"1\"\n"), 0600))
	_, err = Setup(bad)
	assert.Error(t, err)

	conf = DefaultConfiguration()
	assert.Equal(t, DefaultBatch, conf.Host.Batch)
	assert.Equal(t, "0", conf.Ledger.Minimum)
}

func TestAmount(t *testing.T) {
	cases := map[string]uint64{
		"0":          0,
		"1":          100000000,
		"2.5":        250000000,
		"0.00000001": 1,
		"12.3400":    1234000000,
	}
	for s, units := range cases {
		got, err := ParseAmount(s)
		require.NoError(t, err, s)
		assert.Equal(t, units, got, s)
	}
	for _, s := range []string{"", "abc", "-1", "0.000000001", "184467440737.09551616"} {
		_, err := ParseAmount(s)
		assert.Error(t, err, s)
	}

	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "0.00000001", FormatAmount(1))
	assert.Equal(t, "2.5", FormatAmount(250000000))
	assert.Equal(t, "184467440737.09551615", FormatAmount(18446744073709551615))
}

func TestValidateAccount(t *testing.T) {
	assert.NoError(t, validateAccount("e9e5b807-fa8b-455a-8dfa-b189d28310ff"))

	err := validateAccount("alice")
	require.Error(t, err)
	assert.ErrorContains(t, err, `invalid account "alice": uuid: incorrect UUID length`)
	assert.NotNil(t, errors.Unwrap(err))

	err = validateAccount("00000000-0000-0000-0000-000000000000")
	assert.ErrorContains(t, err, "nil uuid")
}

type propertyStore struct {
	Store
	props map[string][]byte
}

func (s *propertyStore) WriteProperty(key, val []byte) error {
	s.props[string(key)] = val
	return nil
}

func (s *propertyStore) ReadProperty(key []byte) ([]byte, error) {
	return s.props[string(key)], nil
}

func TestClockMonotonic(t *testing.T) {
	store := &propertyStore{props: make(map[string][]byte)}
	clock, err := NewClock(store)
	require.NoError(t, err)

	last := clock.Now()
	for i := 0; i < 1000; i++ {
		now := clock.Now()
		require.True(t, now.After(last))
		last = now
	}

	future := time.Now().Add(time.Hour)
	clock.now = future
	clock.Now()
	restarted, err := NewClock(store)
	require.NoError(t, err)
	assert.True(t, restarted.Now().After(future))
}
