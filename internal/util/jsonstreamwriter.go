package util

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
)

type JsonStreamWriterItem struct {
	Key  string
	Data []byte
}

// JsonStreamWriter appends items to a single JSON object on disk, syncing after every
// item so the file is usable up to the last completed write if the process dies.
type JsonStreamWriter[I any] struct {
	Filepath      string
	input         chan JsonStreamWriterItem
	waiter        sync.WaitGroup
	fh            *os.File
	lock          sync.Mutex
	isInitialized bool
	closed        bool
	convert       func(I) (JsonStreamWriterItem, error)
}

func NewJsonStreamWriter[I any](filePath string, convert func(I) (JsonStreamWriterItem, error)) (*JsonStreamWriter[I], error) {
	fh, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	stream := &JsonStreamWriter[I]{
		Filepath: filePath,
		input:    make(chan JsonStreamWriterItem, 128),
		fh:       fh,
		convert:  convert,
	}
	_, err = stream.fh.WriteString("{")
	if err != nil {
		fh.Close()
		return nil, err
	}
	err = stream.fh.Sync()
	if err != nil {
		fh.Close()
		return nil, err
	}

	stream.waiter.Add(1)
	go stream.writer()

	return stream, nil
}

// JsonItem is the usual convert function: marshal the object and key it by key(obj).
func JsonItem[I any](key func(I) string) func(I) (JsonStreamWriterItem, error) {
	return func(obj I) (JsonStreamWriterItem, error) {
		data, err := json.Marshal(obj)
		if err != nil {
			return JsonStreamWriterItem{}, err
		}
		return JsonStreamWriterItem{Key: key(obj), Data: data}, nil
	}
}

func (stream *JsonStreamWriter[I]) writer() {
	defer stream.waiter.Done()
	for item := range stream.input {
		err := stream.WriteItem(item.Key, item.Data)
		if err != nil {
			log.Printf("error: could not write %s to %s: %s\n", item.Key, stream.Filepath, err.Error())
		}
	}
}

func formatBuffer(key string, data []byte, initialized bool) string {
	quotedKey, _ := json.Marshal(key)
	if initialized {
		return fmt.Sprintf(",%s: %s", quotedKey, string(data))
	}
	return fmt.Sprintf("%s: %s", quotedKey, string(data))
}

func (stream *JsonStreamWriter[I]) WriteItem(key string, data []byte) error {
	stream.lock.Lock()
	defer stream.lock.Unlock()

	s := formatBuffer(key, data, stream.isInitialized)
	stream.isInitialized = true

	_, err := stream.fh.WriteString(s)
	if err != nil {
		return err
	}

	return stream.fh.Sync()
}

func (stream *JsonStreamWriter[I]) WriteObject(obj I) {
	item, err := stream.convert(obj)
	if err != nil {
		log.Printf("warning: could not write item to json stream because conversion failed: %s\n", err.Error())
		return
	}
	stream.input <- item
}

func (stream *JsonStreamWriter[I]) Close() {
	stream.lock.Lock()
	if stream.closed {
		stream.lock.Unlock()
		return
	}
	stream.closed = true
	stream.lock.Unlock()

	close(stream.input)

	stream.waiter.Wait()

	stream.lock.Lock()
	defer stream.lock.Unlock()

	_, err := stream.fh.WriteString("}")
	if err != nil {
		log.Printf("error: failed to write closing bracket: %s\n", err.Error())
		return
	}
	err = stream.fh.Sync()
	if err != nil {
		log.Printf("error: failed to sync, bracket might not be committed to file: %s\n", err.Error())
	}

	err = stream.fh.Close()
	if err != nil {
		log.Printf("error: failed to close file handle: %s\n", err.Error())
	}
}
