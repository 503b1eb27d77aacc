// Package inspect loads drawing packages and writes dumps of resulting
// document models.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"vsdxc/archive"
	"vsdxc/common"
	"vsdxc/state"
	"vsdxc/vsdx"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Format = env.Cfg.Document.OutputFormat
	if to := cmd.String("to"); len(to) > 0 {
		if env.Format, err = common.ParseOutputFmt(to); err != nil {
			log.Warn("Unknown output format requested, switching to default", zap.Error(err), zap.Stringer("format", env.Cfg.Document.OutputFormat))
			env.Format = env.Cfg.Document.OutputFormat
		}
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in packages", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", env.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core logic independently of CLI framework. Source is
// either a single package or a directory searched recursively.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	if fi.Mode().IsDir() {
		return processDir(ctx, src, dst, log)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	ok, err := archive.IsPackageFile(src)
	if err != nil {
		return fmt.Errorf("unable to check file type: %w", err)
	}
	if !ok {
		return fmt.Errorf("input was not recognized as drawing package (%s)", src)
	}
	return processPackage(ctx, src, filepath.Base(src), dst, log)
}

// processDir walks directory tree finding packages and processes them. Failed
// packages do not stop the walk, their errors are combined.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) error {
	var (
		count  int
		failed error
	)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		ok, err := archive.IsPackageFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !ok {
			log.Debug("Skipping file, not recognized as package", zap.String("file", path))
			return nil
		}

		count++
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processPackage(ctx, path, rel, dst, log); err != nil {
			log.Error("Unable to process package", zap.String("file", path), zap.Error(err))
			failed = multierr.Append(failed, fmt.Errorf("%s: %w", rel, err))
		}
		return nil
	})
	if err != nil {
		return multierr.Append(failed, err)
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return failed
}

// processPackage loads single package and writes its dump. "src" is part of
// the source path (always including file name) relative to the original path,
// "dst" is the destination directory.
func processPackage(ctx context.Context, path, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	refID := uuid.NewString()
	var outputName string

	log.Info("Inspection starting", zap.String("from", src), zap.String("ref_id", refID))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Inspection ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("inspection panic: %v", r)
		} else if rerr == nil {
			log.Info("Inspection completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("ref_id", refID))
		}
	}(time.Now())

	if err := ctx.Err(); err != nil {
		return err
	}

	if env.Rpt != nil {
		if err := env.Rpt.StoreCopy(fmt.Sprintf("source-%s%s", refID, filepath.Ext(path)), path); err != nil {
			log.Warn("Unable to store package copy in report", zap.String("file", path), zap.Error(err))
		}
	}

	pkg, err := archive.ReadPackage(path, archive.Options{CodePage: env.CodePage, FixZip: env.Cfg.Document.FixZip}, log)
	if err != nil {
		return fmt.Errorf("unable to read package (%s): %w", src, err)
	}
	m, err := vsdx.Load(pkg.Parts, pkg.Media, &env.Cfg.Document, log.Named("model"))
	if err != nil {
		return fmt.Errorf("unable to load package (%s): %w", src, err)
	}

	data, err := render(m, pkg.Name, refID, env.Format)
	if err != nil {
		return err
	}

	outputName = buildOutputPath(buildValues(m, src, refID, env.Format), src, dst, env)
	if err := prepareDestination(outputName, env, log); err != nil {
		return err
	}
	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", refID, env.Format.Ext()), outputName)
	}
	return nil
}

func prepareDestination(outputName string, env *state.LocalEnv, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return os.Remove(outputName)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
