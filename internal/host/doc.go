// Package host finds `view!` invocations inside .view files.
//
// A .view file is host-language source with embedded `view! { ... }` or
// `view!( ... )` calls. Each invocation body is compiled independently. A file
// that contains no invocation at all is treated as a single bare body, so
// plain markup files work too.
package host
