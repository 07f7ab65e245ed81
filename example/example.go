package main

import (
	"bufio"
	"cmp"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	extsort "github.com/ufinke/cubaja-sub001"
	"github.com/ufinke/cubaja-sub001/check"
	"github.com/ufinke/cubaja-sub001/tempfile"
)

var count = int(1e7) // 10M

func int64ToBytes(i int64) ([]byte, error) {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutVarint(buf, i)
	return buf[:n], nil
}

func int64FromBytes(b []byte) (int64, error) {
	i, n := binary.Varint(b)
	if n <= 0 {
		return 0, errors.New("invalid varint")
	}
	return i, nil
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	config := extsort.DefaultConfig()
	config.Compression = tempfile.CompressionLZ4
	config.PreferDiskBacked = true
	config.Logger = log
	config.LogInterval = 5 * time.Second

	sorter, err := extsort.Generic[int64](context.Background(), int64FromBytes, int64ToBytes, cmp.Compare[int64], config)
	if err != nil {
		log.Fatal("create sorter", zap.Error(err))
	}
	defer sorter.Close()
	if err := sorter.WithAlgorithm(extsort.ParallelSort[int64]{}); err != nil {
		log.Fatal("set algorithm", zap.Error(err))
	}

	start := time.Now()
	for i := 0; i < count; i++ {
		if err := sorter.Add(rand.Int63()); err != nil {
			log.Fatal("add", zap.Error(err))
		}
	}
	it, err := sorter.Iterate()
	if err != nil {
		log.Fatal("iterate", zap.Error(err))
	}

	// verify the order while printing
	checked := check.New(cmp.Compare[int64], it, "output")
	w := bufio.NewWriter(os.Stdout)
	for checked.Next() {
		fmt.Fprintln(w, checked.Value())
	}
	if err := checked.Err(); err != nil {
		log.Fatal("sort", zap.Error(err))
	}
	if err := w.Flush(); err != nil {
		log.Fatal("write", zap.Error(err))
	}
	log.Info("sorted",
		zap.Int64("items", checked.Position()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Any("stats", sorter.Stats()),
	)
}
