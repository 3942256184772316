// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/catctl/catctl/internal/meta"
)

const bashCompletionScript = `# bash completion for catctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_catctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "run ls diff show dict history completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --tldr"
    local store="--store --root -r --bucket --prefix --region --endpoint --profile --source-root"

    case "$cmd" in
        run)
            local opts="$common $store --url -u --file --format --no-export --ledger --dict-dir"
            ;;
        ls)
            local opts="$common $store --quick -q"
            ;;
        diff)
            local opts="$common $store --kind -k --raw --ignore"
            ;;
        show)
            local opts="$common $store --kind -k --schema --map"
            ;;
        dict)
            local opts="$common $store --dir"
            ;;
        history)
            local opts="$common --limit -n --ledger"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --kind|-k)
            COMPREPLY=( $(compgen -W "category product hierarchy_edge" -- "$cur") )
            return 0
            ;;
        --store)
            COMPREPLY=( $(compgen -W "local s3" -- "$cur") )
            return 0
            ;;
        --root|-r|--file|--ledger|--dir|--dict-dir)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _catctl catctl
`

const zshCompletionScript = `#compdef catctl

_catctl() {
  local -a cmds
  cmds=(
    'run:fetch the catalog, snapshot it and report the delta'
    'ls:list snapshots'
    'diff:show the delta between two snapshots'
    'show:list the records of one kind in a snapshot'
    'dict:add new product and category names to the translation dictionaries'
    'history:list recorded runs'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[show local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  local -a store
  store=(
  '--store[snapshot store]:store:(local s3)'
  '(-r --root)'{-r,--root}'[local snapshot directory]:root:_directories'
  '--bucket[S3 bucket]:bucket'
  '--prefix[S3 key prefix]:prefix'
  '--region[AWS region]:region'
  '--endpoint[S3 endpoint URL]:endpoint'
  '--profile[AWS profile]:profile'
  '--source-root[catalog path in the fetched document]:path'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'catctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    run)
      _arguments -C \
        $common $store \
        '(-u --url)'{-u,--url}'[catalog endpoint]:url' \
        '--file[saved catalog document]:file:_files' \
        '--format[report formats]:format:(json csv)' \
        '--no-export[skip the current snapshot export]' \
        '--ledger[run ledger database]:ledger:_files' \
        '--dict-dir[translation dictionary directory]:dir:_directories'
      ;;
    ls)
      _arguments -C \
        $common $store \
        '(-q --quick)'{-q,--quick}'[names only]'
      ;;
    diff)
      _arguments -C \
        $common $store \
        '(-k --kind)'{-k,--kind}'[record kind]:kind:(category product hierarchy_edge)' \
        '--raw[diff the raw documents]' \
        '--ignore[keys left out of a raw diff]:keys' \
        '*::snapshot'
      ;;
    show)
      _arguments -C \
        $common $store \
        '(-k --kind)'{-k,--kind}'[record kind]:kind:(category product hierarchy_edge)' \
        '--schema[list fields]' \
        '--map[category children by name]' \
        '::snapshot'
      ;;
    dict)
      _arguments -C \
        $common $store \
        '--dir[translation dictionary directory]:dir:_directories' \
        '::snapshot'
      ;;
    history)
      _arguments -C \
        $common \
        '(-n --limit)'{-n,--limit}'[limit entries]:limit' \
        '--ledger[run ledger database]:ledger:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _catctl catctl
`

// completionScript returns the script for shell, falling back to $SHELL.
func completionScript(shell string) (string, bool) {
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}
	switch shell {
	case "bash":
		return bashCompletionScript, true
	case "zsh":
		return zshCompletionScript, true
	}
	return "", false
}

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	script, ok := completionScript(cmd.Args().First())
	if !ok {
		fmt.Fprintln(os.Stderr, "usage: catctl completion [bash|zsh]")
		return nil
	}
	fmt.Fprint(Writer(cmd), script)
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "catctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
