// Command fillcache dials a running odin-cache server and loads it with a
// spread of keys carrying increasing expiries, to exercise the purge loop
// under load.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"odin-cache/internal/protocol"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7878", "address of the cache server")
	count := flag.Int("count", 7000, "number of keys to set")
	start := flag.Int("start", 10, "first key/value to set")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	writer := bufio.NewWriter(conn)
	reader := bufio.NewReader(conn)

	fmt.Println("Started filling")
	for i := *start; i < *count; i++ {
		expiry := 10 * i
		key := strconv.Itoa(i)

		req := protocol.Array([]protocol.Value{
			protocol.BulkString("SET"),
			protocol.BulkString(key),
			protocol.BulkString(key),
			protocol.BulkString("EXP"),
			protocol.BulkString(strconv.Itoa(expiry)),
		})

		if _, err := writer.Write(protocol.Encode(req)); err != nil {
			fmt.Fprintf(os.Stderr, "write key %s: %v\n", key, err)
			os.Exit(1)
		}
		if err := writer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "flush key %s: %v\n", key, err)
			os.Exit(1)
		}

		drainReply(reader)
		time.Sleep(100 * time.Nanosecond)
	}
	fmt.Println("Terminated.")
}

// drainReply reads and discards exactly one reply frame so the connection
// stays in sync with the server's request/response ordering.
func drainReply(reader *bufio.Reader) {
	var accum []byte
	for {
		chunk := make([]byte, 256)
		n, err := reader.Read(chunk)
		if n > 0 {
			accum = append(accum, chunk[:n]...)
			if _, consumed, derr := protocol.Decode(accum); derr == nil {
				_ = consumed
				return
			}
		}
		if err != nil {
			return
		}
	}
}
