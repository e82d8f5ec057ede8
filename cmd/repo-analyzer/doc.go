// Repo-analyzer is a CLI that turns a repository into a structured
// architecture report using LLM providers.
//
// It clones or opens a repository, splits its source files into
// priority-ordered chunks, compresses oversized files by eliding deeply
// nested code, dispatches the chunks sequentially under provider rate
// limits, and assembles the responses into markdown and JSON reports.
//
// Usage:
//
//	repo-analyzer analyze --repo https://github.com/user/repo
//	repo-analyzer analyze --repo . --mode developer --verbose
//	repo-analyzer analyze --repo . --conversation-mode
//	repo-analyzer check
//	repo-analyzer cache show
package main
