package main

import (
	_ "github.com/kbukum/cloudstore/storage/azblob"
	_ "github.com/kbukum/cloudstore/storage/gcs"
	_ "github.com/kbukum/cloudstore/storage/local"
	_ "github.com/kbukum/cloudstore/storage/memory"
	_ "github.com/kbukum/cloudstore/storage/s3"
)

func main() {
	Execute()
}
