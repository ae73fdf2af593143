// Package toolchain drives the external compiler: it runs `build` invocations
// for the game library and host executable and resolves the toolchain
// installation root. Every invocation blocks until the compiler exits and its
// output is captured in full.
package toolchain
