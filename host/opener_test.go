package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpener_RejectsNonURL(t *testing.T) {
	assert.Error(t, Opener{}.OpenURL("just some text"))
	assert.Error(t, Opener{}.OpenURL("file:///etc/passwd"))
}
