package events

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/chrisdamba/foodstore/internal/cloudwriter"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"
)

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// partitionPath derives the year/month/day/hour folder from the event's
// timestamp field.
func partitionPath(msg []byte) (map[string]interface{}, string, error) {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return nil, "", err
	}
	timestamp, ok := event["timestamp"].(float64)
	if !ok {
		return nil, "", fmt.Errorf("invalid timestamp")
	}
	eventTime := time.Unix(int64(timestamp), 0).UTC()
	year, month, day := eventTime.Date()
	return event, fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, eventTime.Hour()), nil
}

// JSONOutput appends newline-delimited events to partitioned files.
type JSONOutput struct {
	mu       sync.Mutex
	basePath string
	folder   string
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	_, partition, err := partitionPath(msg)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(j.basePath, j.folder, topic, partition)

	j.mu.Lock()
	defer j.mu.Unlock()

	fileKey := topic + "_" + partition
	file, ok := j.files[fileKey]
	if !ok {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err = os.OpenFile(filepath.Join(fullPath, "data.json"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err = file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var lastErr error
	for key, file := range j.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
		delete(j.files, key)
	}
	return lastErr
}

// CSVOutput writes one partitioned CSV file per topic with sorted headers.
type CSVOutput struct {
	mu       sync.Mutex
	basePath string
	folder   string
	files    map[string]*os.File
	writers  map[string]*csv.Writer
	headers  map[string][]string
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
		writers:  make(map[string]*csv.Writer),
		headers:  make(map[string][]string),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	event, partition, err := partitionPath(msg)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(c.basePath, c.folder, topic, partition)

	c.mu.Lock()
	defer c.mu.Unlock()

	fileKey := topic + "_" + partition
	csvWriter, ok := c.writers[fileKey]
	if !ok {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err := os.Create(filepath.Join(fullPath, "data.csv"))
		if err != nil {
			return err
		}
		csvWriter = csv.NewWriter(file)
		c.files[fileKey] = file
		c.writers[fileKey] = csvWriter

		headers := make([]string, 0, len(event))
		for key := range event {
			headers = append(headers, key)
		}
		sort.Strings(headers)
		if err := csvWriter.Write(headers); err != nil {
			return err
		}
		c.headers[fileKey] = headers
	}

	row := make([]string, len(c.headers[fileKey]))
	for i, header := range c.headers[fileKey] {
		if value, ok := event[header]; ok {
			row[i] = formatValue(value)
		}
	}
	if err := csvWriter.Write(row); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func formatValue(v interface{}) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}

func (c *CSVOutput) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var lastErr error
	for key, csvWriter := range c.writers {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			lastErr = err
		}
		if err := c.files[key].Close(); err != nil {
			lastErr = err
		}
	}
	c.writers = make(map[string]*csv.Writer)
	c.files = make(map[string]*os.File)
	return lastErr
}

// ParquetOutput writes typed event rows to partitioned parquet files, on local
// disk or streamed to object storage when a cloud writer factory is set.
type ParquetOutput struct {
	mu                 sync.Mutex
	basePath           string
	folder             string
	topics             Topics
	writers            map[string]*writer.ParquetWriter
	files              map[string]source.ParquetFile
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
	logger             *zap.Logger
}

func NewParquetOutput(basePath, folder string, topics Topics, logger *zap.Logger) *ParquetOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParquetOutput{
		basePath: basePath,
		folder:   folder,
		topics:   topics,
		writers:  make(map[string]*writer.ParquetWriter),
		files:    make(map[string]source.ParquetFile),
		logger:   logger,
	}
}

// WithCloudStorage makes the output upload each partition file to bucket.
func (p *ParquetOutput) WithCloudStorage(factory cloudwriter.CloudWriterFactory, bucket string) *ParquetOutput {
	p.cloudWriterFactory = factory
	p.cloudBucketName = bucket
	return p
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	_, partition, err := partitionPath(msg)
	if err != nil {
		return err
	}
	row, err := p.topics.decode(topic, msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	writerKey := topic + "_" + partition
	pw, ok := p.writers[writerKey]
	if !ok {
		pw, err = p.createNewWriter(writerKey, topic, partition)
		if err != nil {
			return fmt.Errorf("failed to create new writer: %w", err)
		}
	}

	if err := pw.Write(row); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) createNewWriter(writerKey, topic, partition string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	var err error
	if p.cloudWriterFactory != nil {
		objectPath := filepath.ToSlash(filepath.Join(p.folder, topic, partition, "data.parquet"))
		cloudWriter, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cloudWriter)
	} else {
		fullPath := filepath.Join(p.basePath, p.folder, topic, partition)
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	obj, err := p.topics.newEvent(topic)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, obj, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}

	p.writers[writerKey] = pw
	p.files[writerKey] = fw
	return pw, nil
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for key, pw := range p.writers {
		if err := pw.WriteStop(); err != nil {
			lastErr = err
			p.logger.Error("error closing parquet writer", zap.String("key", key), zap.Error(err))
		}
		if f, ok := p.files[key]; ok {
			if err := f.Close(); err != nil {
				lastErr = err
				p.logger.Error("error closing parquet file", zap.String("key", key), zap.Error(err))
			}
		}
	}
	p.writers = make(map[string]*writer.ParquetWriter)
	p.files = make(map[string]source.ParquetFile)
	return lastErr
}

// CloudParquetFile adapts a CloudWriter to the write-only side of
// source.ParquetFile.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	n, err = c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
