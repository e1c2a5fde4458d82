// Package prep builds the offline artifacts from a labelled photo tree:
// segmented copies of every photo and the reference feature dataset.
//
// A photo tree has one directory per class:
//
//	dataset/
//	  HEALTHY/001.jpg
//	  LEAF_BLIGHT/002.jpg
package prep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aliffadillah/durian-leaf-classification/internal/dataset"
	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
	"github.com/aliffadillah/durian-leaf-classification/internal/glcm"
	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
	"github.com/aliffadillah/durian-leaf-classification/internal/logger"
	"github.com/aliffadillah/durian-leaf-classification/internal/pipeline"
	"github.com/aliffadillah/durian-leaf-classification/internal/segment"
)

var imageExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// Sample is one photo of the tree.
type Sample struct {
	Label string
	Path  string
}

// Walk lists the photos under dir in class then file name order. Hidden
// entries and files that are not images are skipped.
func Walk(dir string) ([]Sample, error) {
	classes, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("can't read photo tree: %w", err)
	}

	var samples []Sample
	for _, c := range classes {
		if !c.IsDir() || strings.HasPrefix(c.Name(), ".") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, c.Name()))
		if err != nil {
			return nil, fmt.Errorf("can't read class %s: %w", c.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			if !imageExt[strings.ToLower(filepath.Ext(f.Name()))] {
				continue
			}
			samples = append(samples, Sample{
				Label: c.Name(),
				Path:  filepath.Join(dir, c.Name(), f.Name()),
			})
		}
	}
	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].Label != samples[j].Label {
			return samples[i].Label < samples[j].Label
		}
		return samples[i].Path < samples[j].Path
	})
	return samples, nil
}

// SegmentDir writes the segmented version of every photo under in to the
// same class directory under out. Outputs are always PNG so the texture of
// the segmented leaf is not altered by lossy re-encoding.
func SegmentDir(ctx context.Context, in, out string, seg segment.Segmenter, log *logger.Manager) (int, error) {
	samples, err := Walk(in)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		img, err := leafimage.DecodeFile(s.Path)
		if err != nil {
			return n, fmt.Errorf("%s: %w", s.Path, err)
		}
		segmented, err := seg.Segment(img)
		if err != nil {
			return n, fmt.Errorf("%s: %w", s.Path, err)
		}

		name := strings.TrimSuffix(filepath.Base(s.Path), filepath.Ext(s.Path)) + ".png"
		dst := filepath.Join(out, s.Label, name)
		if err := leafimage.EncodeFile(dst, segmented); err != nil {
			return n, err
		}
		log.Debug("segmented %s -> %s", s.Path, dst)
		n++
	}
	log.Info("Segmented %d photos into %s", n, out)
	return n, nil
}

// ExtractDir computes the descriptor of every (already segmented) photo
// under in. Photos whose texture is degenerate are skipped and counted.
func ExtractDir(ctx context.Context, in string, ex pipeline.Extractor, log *logger.Manager) (*dataset.Dataset, int, error) {
	samples, err := Walk(in)
	if err != nil {
		return nil, 0, err
	}

	var descriptors []feature.Vector
	var labels []string
	skipped := 0
	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		img, err := leafimage.DecodeFile(s.Path)
		if err != nil {
			return nil, skipped, fmt.Errorf("%s: %w", s.Path, err)
		}
		v, err := ex.Extract(img)
		if errors.Is(err, glcm.ErrDegenerate) {
			log.Error("skipping %s: %v", s.Path, err)
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("%s: %w", s.Path, err)
		}
		descriptors = append(descriptors, v)
		labels = append(labels, s.Label)
	}

	d, err := dataset.FromSamples(descriptors, labels)
	if err != nil {
		return nil, skipped, err
	}
	log.Info("Extracted %d descriptors (%d skipped), labels %v", d.Len(), skipped, d.Labels())
	return d, skipped, nil
}
