// Package host exposes the machine a template is rendered on to templates.
//
// [Register] adds globals describing the host (env, cwd, platform, target,
// hostname, user, shell, expr), filters manipulating filesystem paths and
// PATH-like lists (path_abs, path_join, path_rel, path_prefix), and tests
// inspecting the filesystem (exists, directory, regular_file, symlink).
//
// None of these are installed by default: rendering untrusted templates with
// host access enabled leaks the process environment. The jinja command line
// enables them with --host.
//
// [Eval] evaluates an expr-lang expression against the same host information.
// It backs the expr global and the --set flag of the command line.
package host
