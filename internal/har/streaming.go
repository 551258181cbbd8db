package har

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// StreamingLoader decodes log.entries incrementally so that large captures can
// report progress while they load
type StreamingLoader struct {
	entries    []HAREntry
	sawEntries bool
	version    string
	mutex      sync.RWMutex

	onEntryAdded func(entry HAREntry, index int)
	onComplete   func()
	onError      func(error)
	onProgress   func(count int)

	batchSize int
}

func NewStreamingLoader() *StreamingLoader {
	return &StreamingLoader{
		entries:   make([]HAREntry, 0),
		batchSize: 50,
	}
}

func (sl *StreamingLoader) SetCallbacks(onEntryAdded func(HAREntry, int), onComplete func(), onError func(error), onProgress func(int)) {
	sl.onEntryAdded = onEntryAdded
	sl.onComplete = onComplete
	sl.onError = onError
	sl.onProgress = onProgress
}

func (sl *StreamingLoader) GetEntries() []HAREntry {
	sl.mutex.RLock()
	defer sl.mutex.RUnlock()
	out := make([]HAREntry, len(sl.entries))
	copy(out, sl.entries)
	return out
}

func (sl *StreamingLoader) GetEntryCount() int {
	sl.mutex.RLock()
	defer sl.mutex.RUnlock()
	return len(sl.entries)
}

// Document returns what has been loaded so far as a HARFile. Entries stays nil
// when the stream never contained a log.entries array.
func (sl *StreamingLoader) Document() *HARFile {
	sl.mutex.RLock()
	defer sl.mutex.RUnlock()

	doc := &HARFile{Log: &HARLog{Version: sl.version}}
	if sl.sawEntries {
		doc.Log.Entries = make([]HAREntry, len(sl.entries))
		copy(doc.Log.Entries, sl.entries)
	}
	return doc
}

// LoadHARFileStreaming opens filePath and decodes it in a background goroutine
func (sl *StreamingLoader) LoadHARFileStreaming(filePath string) {
	go func() {
		file, err := os.Open(filePath)
		if err != nil {
			sl.fail(err)
			return
		}
		defer file.Close()

		if err := sl.Load(file); err != nil {
			sl.fail(err)
			return
		}
		if sl.onComplete != nil {
			sl.onComplete()
		}
	}()
}

// Load decodes a HAR stream synchronously, invoking the callbacks as it goes
func (sl *StreamingLoader) Load(r io.Reader) error {
	decoder := json.NewDecoder(r)

	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected opening brace")
	}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		if key, ok := token.(string); ok && key == "log" {
			if err := sl.parseLog(decoder); err != nil {
				return err
			}
		} else if err := skipValue(decoder); err != nil {
			return err
		}
	}
	return nil
}

func (sl *StreamingLoader) fail(err error) {
	if sl.onError != nil {
		sl.onError(err)
	}
}

func (sl *StreamingLoader) parseLog(decoder *json.Decoder) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token == nil {
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected opening brace for log object")
	}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		key, _ := token.(string)
		switch key {
		case "entries":
			if err := sl.parseEntries(decoder); err != nil {
				return err
			}
		case "version":
			var version string
			if err := decoder.Decode(&version); err != nil {
				return err
			}
			sl.mutex.Lock()
			sl.version = version
			sl.mutex.Unlock()
		default:
			if err := skipValue(decoder); err != nil {
				return err
			}
		}
	}

	// consume the closing brace of log
	_, err = decoder.Token()
	return err
}

func (sl *StreamingLoader) parseEntries(decoder *json.Decoder) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token == nil {
		// "entries": null is treated like a missing container
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("expected opening bracket for entries array")
	}

	sl.mutex.Lock()
	sl.sawEntries = true
	sl.mutex.Unlock()

	entryCount := 0
	for decoder.More() {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return err
		}

		var entry HAREntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			entry = HAREntry{DecodeErr: err}
		}

		sl.mutex.Lock()
		sl.entries = append(sl.entries, entry)
		index := len(sl.entries) - 1
		sl.mutex.Unlock()

		if sl.onEntryAdded != nil {
			sl.onEntryAdded(entry, index)
		}

		entryCount++
		if entryCount%sl.batchSize == 0 && sl.onProgress != nil {
			sl.onProgress(entryCount)
		}
	}

	if sl.onProgress != nil {
		sl.onProgress(entryCount)
	}

	// consume the closing bracket
	_, err = decoder.Token()
	return err
}

func skipValue(decoder *json.Decoder) error {
	var dummy json.RawMessage
	return decoder.Decode(&dummy)
}
