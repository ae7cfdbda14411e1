package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt_HashThenVerify(t *testing.T) {
	b := Bcrypt{Cost: bcrypt.MinCost}
	hash, err := b.Hash("correct-horse")
	require.NoError(t, err)
	assert.True(t, b.Verify(hash, "correct-horse"))
	assert.False(t, b.Verify(hash, "wrong-horse"))
}

func TestBcrypt_MalformedHashNeverMatches(t *testing.T) {
	assert.False(t, Bcrypt{}.Verify("not-a-hash", "anything"))
}
