package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/John-Robertt/kinotop/internal/app/run"
	"github.com/John-Robertt/kinotop/internal/config"
	"github.com/John-Robertt/kinotop/internal/logging"
	"github.com/John-Robertt/kinotop/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "не удалось прочитать текущий каталог: %v\n", err)
		os.Exit(1)
	}

	code := runCLI(ctx, os.Args[1:], cwd, os.Stdout, os.Stderr)
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

// runCLI 返回进程退出码：0 成功；1 排片页不可用/结构异常/配置错误；2 参数错误。
func runCLI(ctx context.Context, args []string, cwd string, stdout, stderr io.Writer) int {
	for _, a := range args {
		if isHelp(a) {
			printUsage(stdout)
			return 0
		}
	}

	cli, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "ошибка аргументов: %v\n\n", err)
		printUsage(stderr)
		return 2
	}

	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		fmt.Fprintf(stderr, "ошибка конфигурации: %v\n", err)
		return 1
	}

	log := logging.New(stderr, eff.LogLevel)

	var obs run.Observer
	if isTTY(stderr) {
		obs = newProgressUI(stderr)
	}

	movies, err := run.Execute(ctx, eff, log, obs)
	if err != nil {
		return reportFailure(stderr, err)
	}

	if err := report.Render(stdout, movies, report.Options{
		Top:          eff.Top,
		MinVenues:    eff.MinVenues,
		MinVenuesSet: eff.MinVenuesSet,
	}); err != nil {
		fmt.Fprintf(stderr, "ошибка вывода: %v\n", err)
		return 1
	}
	return 0
}

// reportFailure 把 Execute 的错误写成一行诊断，返回退出码。
func reportFailure(stderr io.Writer, err error) int {
	var ue *run.UnavailableError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "страница недоступна: %s\n", ue.URL)
		return 1
	}
	fmt.Fprintf(stderr, "%v\n", err)
	return 1
}

func parseArgs(args []string) (config.CLIArgs, error) {
	cli := config.CLIArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]

		name, value, hasValue := a, "", false
		if strings.HasPrefix(a, "--") {
			if k, v, ok := strings.Cut(a, "="); ok {
				name, value, hasValue = k, v, true
			}
		}

		switch name {
		case "-t", "--top", "-c", "--cinemas", "--config":
		default:
			if strings.HasPrefix(a, "-") {
				return config.CLIArgs{}, fmt.Errorf("неизвестный параметр %q", a)
			}
			return config.CLIArgs{}, fmt.Errorf("лишний аргумент %q", a)
		}

		if !hasValue {
			if i+1 >= len(args) {
				return config.CLIArgs{}, fmt.Errorf("%s требует значение", name)
			}
			i++
			value = args[i]
		}

		switch name {
		case "-t", "--top":
			n, err := parseCount(name, value)
			if err != nil {
				return config.CLIArgs{}, err
			}
			cli.Top, cli.TopSet = n, true
		case "-c", "--cinemas":
			n, err := parseCount(name, value)
			if err != nil {
				return config.CLIArgs{}, err
			}
			cli.MinVenues, cli.MinVenuesSet = n, true
		case "--config":
			if strings.TrimSpace(value) == "" {
				return config.CLIArgs{}, errors.New("--config не может быть пустым")
			}
			cli.ConfigPath = value
		}
	}
	return cli, nil
}

func parseCount(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s ожидает целое число, получено %q", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s не может быть отрицательным: %d", name, n)
	}
	return n, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Выводит самые популярные фильмы, идущие в данный момент, отсортированные по рейтингу.

Использование:
  kinotop [-t ТОП] [-c КИНОТЕАТРЫ] [--config ФАЙЛ]

Параметры:
  -t, --top       размер топ-списка фильмов (по умолчанию 10)
  -c, --cinemas   минимальное количество кинотеатров, в которых идет показ фильма
  --config        файл настроек YAML (по умолчанию ./kinotop.yaml, если есть)
  -h, --help      показать справку
`)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
