package driver

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"tacc/internal/buildpipeline"
	"tacc/internal/diag"
	"tacc/internal/source"
	"tacc/internal/trace"
)

// SourceExt is the extension CompileDir picks up.
const SourceExt = ".tac"

// DirResult содержит результат компиляции одного файла директории.
type DirResult struct {
	Path   string    // путь для отображения, относительно директории
	Result *Result   // nil, если файл не загрузился
	Bag    *diag.Bag // диагностики; для Result != nil это Result.Bag
	Output string    // вывод интерпретатора при Options.Run
}

// ListSourceFiles возвращает отсортированный список всех *.tac файлов в директории
func ListSourceFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CompileDir компилирует все *.tac файлы в директории параллельно.
// Results follow ListSourceFiles order whatever order the workers finish in.
// opts.DisplayName and opts.RunOut are set per file.
func CompileDir(ctx context.Context, dir string, opts Options, jobs int) (*source.FileSet, []DirResult, error) {
	files, err := ListSourceFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSet()
	fileSet.SetBaseDir(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "compile-dir")
	span.WithExtra("dir", dir).WithCount("files", len(files))
	defer span.End("")

	// Предзагружаем файлы последовательно: дальше FileSet только читается
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	display := make([]string, len(files))
	for i, path := range files {
		display[i] = buildpipeline.DisplayPath(path, dir)
	}
	buildpipeline.EmitQueued(opts.Progress, display)

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]DirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if loadErr, failed := loadErrors[path]; failed {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
					"failed to load "+display[i]+": "+loadErr.Error()))
				results[i] = DirResult{Path: display[i], Bag: bag}
				buildpipeline.EmitStage(opts.Progress, display[i], buildpipeline.StageLex, buildpipeline.StatusError, loadErr, 0)
				return nil
			}

			fileOpts := opts
			fileOpts.DisplayName = display[i]
			var out bytes.Buffer
			if opts.Run {
				fileOpts.RunOut = &out
			}

			res, err := Compile(gctx, fileSet, fileIDs[path], fileOpts)
			if err != nil {
				return err
			}
			results[i] = DirResult{
				Path:   display[i],
				Result: res,
				Bag:    res.Bag,
				Output: out.String(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
