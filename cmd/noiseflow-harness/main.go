// Command noiseflow-harness runs the Noise test-vector corpus against
// package noise and reports pass/fail per vector, per spec.md section 6's
// external-harness contract.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"sync"

	"noiseflow/internal/logging"
	"noiseflow/vectors"
)

func main() {
	var vectorsPath string
	var verbose bool
	flag.StringVar(&vectorsPath, "vectors", "testdata/vectors", "Path to a vector file or directory of vector files")
	flag.BoolVar(&verbose, "v", false, "Log every vector, not just failures")
	flag.Parse()

	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logger := logging.New(level, os.Stdout).With(map[string]interface{}{"component": "noiseflow-harness"})

	files, err := vectorFiles(vectorsPath)
	if err != nil {
		logger.Error("failed to resolve vectors path", map[string]interface{}{"path": vectorsPath, "error": err.Error()})
		os.Exit(1)
	}

	allVectors, err := loadVectors(files)
	if err != nil {
		logger.Error("failed to load vectors", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	results := runAll(allVectors)

	failed := 0
	for _, r := range results {
		fields := map[string]interface{}{"vector": r.Name, "passed": r.Passed}
		if !r.Passed {
			fields["reason"] = r.Reason
			logger.Error("vector failed", fields)
			failed++
		} else if verbose {
			logger.Debug("vector passed", fields)
		}
	}

	logger.Info("vector run complete", map[string]interface{}{
		"total":  len(results),
		"failed": failed,
	})

	if failed > 0 {
		os.Exit(1)
	}
}

// vectorFiles resolves path to a list of JSON files: itself if it is a
// file, or every *.json entry in it if it is a directory.
func vectorFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files, nil
}

func loadVectors(files []string) ([]vectors.Vector, error) {
	var all []vectors.Vector
	for _, f := range files {
		fh, err := os.Open(f)
		if err != nil {
			return nil, err
		}
		suite, err := vectors.DecodeSuite(fh)
		closeErr := fh.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, closeErr
		}
		all = append(all, suite.Vectors...)
	}
	return all, nil
}

// runAll drives every vector concurrently (spec.md section 5: vectors are
// fully independent, so the harness may fan them out one goroutine each).
func runAll(vs []vectors.Vector) []*vectors.Result {
	results := make([]*vectors.Result, len(vs))
	var wg sync.WaitGroup
	for i, v := range vs {
		wg.Add(1)
		go func(i int, v vectors.Vector) {
			defer wg.Done()
			results[i] = vectors.Run(v)
		}(i, v)
	}
	wg.Wait()
	return results
}
