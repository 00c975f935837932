// Package pip wraps the pip package manager via `python -m pip`.
//
// It serves as the package-manager integration layer for the tradestack
// CLI: installing the target packages and querying installed versions.
//
// Design decisions:
//   - pip is always invoked as `python -m pip` through the resolved
//     interpreter, never as a bare `pip` binary, so the install target is
//     guaranteed to be the same environment the verification snippets run in.
//   - All invocations go through runner.CommandRunner so tests can exercise
//     every install path without a real Python toolchain.
//   - A missing pip is wrapped in model.CLIError with ExitPipNotFound to
//     enable proper CLI exit code handling.
package pip
