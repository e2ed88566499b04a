/*
Package roboguice binds abstract service types to providers whose lifetime
can be tied to a running screen or background unit instead of the process.

# Core Components

ContextScope tracks which context handle is current for an execution:
  - Enter and Exit bracket the time a handle is current
  - GetOrCreate caches instances per handle
  - instances implementing Shutdowner are released on the last Exit

Assembler decides and registers bindings:
  - Plan filters candidate definitions through the usage registry
  - Configure builds an Injector from the active bindings
  - DefaultDefinitions supplies the bindings every injector starts with

Injector resolves bindings and can install them into a dig container.

# Usage

	a, err := roboguice.FromConfig(cfg, caps, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	inj, err := a.Configure(
		roboguice.ContextSystemService[*LayoutInflater](),
		roboguice.ContextSingleton(newPreferenceListener),
	)
	if err != nil {
		return err
	}

	ctx, sess, err := inj.Scope().Enter(nil, activity)
	if err != nil {
		return err
	}
	defer sess.Exit()

	inflater, err := roboguice.Get[*LayoutInflater](ctx, inj)
*/
package roboguice
