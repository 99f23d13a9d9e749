package orders_test

import "testing"

func TestPlain(t *testing.T) {
	t.Run("sub", func(t *testing.T) {})
}
