package credentials

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dollpublish/dollpublish/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestRegistry(t *testing.T, dir string, users map[string]string) {
	t.Helper()
	reg := registry{Users: map[string]User{}}
	for name, key := range users {
		reg.Users[name] = User{APIKey: key}
	}
	b, err := json.Marshal(reg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, RegistryFile), b, 0o644))
}

func TestBootstrapCreatesDefaultUser(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, []string{DefaultUser}, s.Usernames())

	u, ok := s.Lookup(DefaultUser)
	require.True(t, ok)
	require.NotEmpty(t, u.APIKey)

	b, err := os.ReadFile(filepath.Join(dir, RegistryFile))
	require.NoError(t, err)
	var reg registry
	require.NoError(t, json.Unmarshal(b, &reg))
	assert.Equal(t, u.APIKey, reg.Users[DefaultUser].APIKey)

	name, ok := s.Verify(u.APIKey)
	assert.True(t, ok)
	assert.Equal(t, DefaultUser, name)
}

func TestBootstrapKeyDiffersPerInstall(t *testing.T) {
	a, err := Open(t.TempDir())
	require.NoError(t, err)
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	ua, _ := a.Lookup(DefaultUser)
	ub, _ := b.Lookup(DefaultUser)
	assert.NotEqual(t, ua.APIKey, ub.APIKey)
}

func TestNoBootstrapWhenRegistryExists(t *testing.T) {
	dir := t.TempDir()
	writeTestRegistry(t, dir, map[string]string{"alice": "alice-key"})
	s, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, s.Usernames())

	// reopening keeps the bootstrap key stable
	fresh := t.TempDir()
	first, err := Open(fresh)
	require.NoError(t, err)
	second, err := Open(fresh)
	require.NoError(t, err)
	k1, _ := first.Lookup(DefaultUser)
	k2, _ := second.Lookup(DefaultUser)
	assert.Equal(t, k1, k2)
}

func TestOpenMalformedRegistry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RegistryFile), []byte("{"), 0o644))
	_, err := Open(dir)
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	writeTestRegistry(t, dir, map[string]string{"alice": "alice-key", "bob": "bob-key", "ghost": ""})
	s, err := Open(dir)
	require.NoError(t, err)

	name, ok := s.Verify("alice-key")
	assert.True(t, ok)
	assert.Equal(t, "alice", name)

	// either presented value may match
	name, ok = s.Verify("wrong", "bob-key")
	assert.True(t, ok)
	assert.Equal(t, "bob", name)

	_, ok = s.Verify("alice")
	assert.False(t, ok, "no prefix or partial matching")
	_, ok = s.Verify("alice-key-extra")
	assert.False(t, ok)
	_, ok = s.Verify("", "")
	assert.False(t, ok, "empty credentials never match an empty stored key")
	_, ok = s.Verify()
	assert.False(t, ok)
}

func TestVerifyMissReloadsOnce(t *testing.T) {
	dir := t.TempDir()
	writeTestRegistry(t, dir, map[string]string{"alice": "alice-key"})
	s, err := Open(dir)
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.RegistryReloads.WithLabelValues("ok"))
	_, ok := s.Verify("nobody")
	assert.False(t, ok)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RegistryReloads.WithLabelValues("ok")))

	// a hit from memory does not touch the disk
	_, ok = s.Verify("alice-key")
	assert.True(t, ok)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RegistryReloads.WithLabelValues("ok")))
}

func TestVerifyPicksUpRotatedKeys(t *testing.T) {
	dir := t.TempDir()
	writeTestRegistry(t, dir, map[string]string{"alice": "old-key"})
	s, err := Open(dir)
	require.NoError(t, err)

	writeTestRegistry(t, dir, map[string]string{"alice": "new-key", "carol": "carol-key"})

	name, ok := s.Verify("new-key")
	require.True(t, ok)
	assert.Equal(t, "alice", name)
	name, ok = s.Verify("carol-key")
	require.True(t, ok)
	assert.Equal(t, "carol", name)
	_, ok = s.Verify("old-key")
	assert.False(t, ok, "rotated key is gone after reload")
}

func TestVerifyKeepsUsersWhenReloadFails(t *testing.T) {
	dir := t.TempDir()
	writeTestRegistry(t, dir, map[string]string{"alice": "alice-key"})
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, RegistryFile), []byte("not json"), 0o644))
	_, ok := s.Verify("unknown")
	assert.False(t, ok)

	name, ok := s.Verify("alice-key")
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
}

func TestVerifyConcurrent(t *testing.T) {
	dir := t.TempDir()
	writeTestRegistry(t, dir, map[string]string{"alice": "alice-key"})
	s, err := Open(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				if name, ok := s.Verify("alice-key"); !ok || name != "alice" {
					t.Errorf("verify alice: %q %v", name, ok)
				}
				return
			}
			if _, ok := s.Verify("bad"); ok {
				t.Errorf("bad key verified")
			}
		}(i)
	}
	wg.Wait()
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeTestRegistry(t, dir, map[string]string{"alice": "alice-key"})
	s, err := Open(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, Watch(ctx, s))

	writeTestRegistry(t, dir, map[string]string{"alice": "alice-key", "dave": "dave-key"})

	require.Eventually(t, func() bool {
		_, ok := s.Lookup("dave")
		return ok
	}, 3*time.Second, 20*time.Millisecond)
}

func TestPutAndRemove(t *testing.T) {
	dir := t.TempDir()
	writeTestRegistry(t, dir, map[string]string{"alice": "alice-key"})
	s, err := Open(dir)
	require.NoError(t, err)

	// an edit made on disk after Open survives a Put
	writeTestRegistry(t, dir, map[string]string{"alice": "alice-key", "bob": "bob-key"})
	require.NoError(t, s.Put("carol", "carol-key"))
	assert.Equal(t, []string{"alice", "bob", "carol"}, s.Usernames())

	reopened, err := Open(dir)
	require.NoError(t, err)
	name, ok := reopened.Verify("carol-key")
	require.True(t, ok)
	assert.Equal(t, "carol", name)

	require.NoError(t, s.Put("alice", "rotated"))
	_, ok = s.Verify("alice-key")
	assert.False(t, ok)

	require.NoError(t, s.Remove("bob"))
	assert.Equal(t, []string{"alice", "carol"}, s.Usernames())
	assert.Error(t, s.Remove("bob"))
	assert.Error(t, s.Put("", "x"))
	assert.Error(t, s.Put("dave", ""))
}
