package bmp565

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

func (l *Library) findBitmaps(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			if strings.ToLower(filepath.Ext(file)) != ".bmp" {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (l *Library) decodeWorker(ctx context.Context, base string, in <-chan string) (<-chan frame, <-chan error, error) {
	out := make(chan frame)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for file := range in {
			rel, err := filepath.Rel(base, file)
			if err != nil {
				errc <- err
				return
			}

			fr, err := l.decodeFile(file, assetName(rel))
			if err != nil {
				// A broken bitmap shouldn't stop the rest of the scan
				if isFormatError(err) {
					l.logger.Printf("Skipping \"%s\": %v\n", file, err)
					continue
				}
				errc <- err
				return
			}

			select {
			case out <- fr:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc, nil
}

func (l *Library) storeWorker(ctx context.Context, in <-chan frame) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for fr := range in {
			if err := l.db.Add(fr.name, fr.sha, l.background, fr.image); err != nil {
				errc <- err
				return
			}
			l.logger.Printf("Imported \"%s\"\n", fr.name)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func mergeFrames(ctx context.Context, cs ...<-chan frame) <-chan frame {
	var wg sync.WaitGroup
	out := make(chan frame)
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan frame) {
			defer wg.Done()
			for fr := range c {
				select {
				case out <- fr:
				case <-ctx.Done():
					return
				}
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path and imports every bitmap found, decoding them in
// parallel. Files that are not valid bitmaps are logged and skipped.
func (l *Library) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error
	var frames []<-chan frame

	files, errc, err := l.findBitmaps(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < runtime.NumCPU(); i++ {
		out, errc, err := l.decodeWorker(ctx, dir, files)
		if err != nil {
			return err
		}
		frames = append(frames, out)
		errcList = append(errcList, errc)
	}

	errc, err = l.storeWorker(ctx, mergeFrames(ctx, frames...))
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	return waitForPipeline(errcList...)
}
