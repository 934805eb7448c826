package console

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kernelsim/statego/kernel"
	"github.com/kernelsim/statego/msgbuf"
)

func openClient(slaveName string) (*os.File, error) {
	return os.OpenFile(slaveName, os.O_RDWR, 0)
}

func TestConsoleFeedsMessageBuffer(t *testing.T) {
	k := kernel.New()
	buf := msgbuf.New(k, 256)

	c, err := Open(buf)
	require.NoError(t, err)
	defer c.Close()

	require.Same(t, c, buf.Resource())

	client, err := openClient(c.SlaveName())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write([]byte("hello from client\n"))
	require.NoError(t, err)

	var got []byte
	require.Eventually(t, func() bool {
		dst := make([]byte, 64)
		n := buf.Take(dst)
		if n == 0 {
			return false
		}
		got = dst[:n]
		return true
	}, time.Second, time.Millisecond)

	require.Equal(t, "hello from client\n", string(got))
}
