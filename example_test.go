package transferkit_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/gobeaver/transferkit"
	"github.com/gobeaver/transferkit/driver/memory"
)

func ExampleTransferManager() {
	ctx := context.Background()

	// Using memory for the example; use the datalake and netshare drivers
	// in production.
	src := memory.New()
	dst := memory.New()

	_ = src.Write(ctx, "landing/a.txt", strings.NewReader("hello"))
	_ = src.Write(ctx, "landing/sub/b.txt", strings.NewReader("world"))

	tm := transferkit.NewTransferManager(src, dst)
	report, err := tm.TransferDir(ctx, "landing", "out")
	if err != nil {
		fmt.Println("listing failed:", err)
		return
	}

	fmt.Println("files copied:", len(report.Results))
	fmt.Println("bytes copied:", report.Bytes())

	data, _ := dst.ReadAll(ctx, "out/sub/b.txt")
	fmt.Println("out/sub/b.txt:", string(data))

	// Output:
	// files copied: 2
	// bytes copied: 10
	// out/sub/b.txt: world
}

func ExampleTransferManager_TransferFile() {
	ctx := context.Background()

	src := memory.New()
	dst := memory.New()

	_ = src.Write(ctx, "reports/daily.csv", strings.NewReader("date,total\n2024-01-01,42\n"))

	tm := transferkit.NewTransferManager(src, dst, transferkit.WithVerify(transferkit.ChecksumSHA256))
	n, err := tm.TransferFile(ctx, "reports/daily.csv", "archive/daily.csv")
	if err != nil {
		fmt.Println("transfer failed:", err)
		return
	}

	fmt.Println("bytes copied:", n)

	// Output:
	// bytes copied: 25
}

func ExampleWithSelector() {
	ctx := context.Background()

	src := memory.New()
	dst := memory.New()

	_ = src.Write(ctx, "in/a.csv", strings.NewReader("1,2"))
	_ = src.Write(ctx, "in/readme.txt", strings.NewReader("not data"))

	tm := transferkit.NewTransferManager(src, dst,
		transferkit.WithSelector(transferkit.MustGlob("*.csv")))

	report, _ := tm.TransferDir(ctx, "in", "out")
	for _, res := range report.Results {
		fmt.Println("copied:", res.Path)
	}

	// Output:
	// copied: a.csv
}

func ExampleNew() {
	fs, err := transferkit.New(&transferkit.Config{
		Backend: transferkit.BackendMemory,
	})
	if err != nil {
		fmt.Println("init failed:", err)
		return
	}

	ctx := context.Background()
	_ = fs.Write(ctx, "greeting.txt", strings.NewReader("hi"))

	exists, _ := fs.FileExists(ctx, "greeting.txt")
	fmt.Println("exists:", exists)

	// Output:
	// exists: true
}
