package providers

import (
	"sync"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get LLM", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockClient()

		r.RegisterLLM("test-llm", mock)

		client, err := r.GetLLM("test-llm")
		if err != nil {
			t.Fatalf("GetLLM() error = %v", err)
		}
		if client != mock {
			t.Error("got different client than registered")
		}
	})

	t.Run("get nonexistent LLM", func(t *testing.T) {
		r := NewRegistry()
		if _, err := r.GetLLM("nonexistent"); err == nil {
			t.Error("expected error for nonexistent LLM")
		}
	})

	t.Run("list is sorted", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterLLM("zeta", NewMockClient())
		r.RegisterLLM("alpha", NewMockClient())

		names := r.ListLLM()
		if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
			t.Errorf("ListLLM() = %v", names)
		}
	})

	t.Run("unregister", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterLLM("test", NewMockClient())
		r.UnregisterLLM("test")
		if r.HasLLM("test") {
			t.Error("expected client to be removed")
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		r := NewRegistry()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				r.RegisterLLM("shared", NewMockClient())
			}()
			go func() {
				defer wg.Done()
				r.HasLLM("shared")
				r.ListLLM()
			}()
		}
		wg.Wait()
		if !r.HasLLM("shared") {
			t.Error("expected shared client")
		}
	})
}

func TestNewRegistryFromConfig(t *testing.T) {
	r := NewRegistryFromConfig(RegistryConfig{
		LLMProviders: map[string]LLMProviderConfig{
			"openrouter": {Type: "openrouter", APIKey: "k1", Model: "google/gemini-2.5-flash", Enabled: true},
			"openai":     {Type: "openai", APIKey: "k2", Enabled: true},
			"disabled":   {Type: "openrouter", APIKey: "k3", Enabled: false},
			"no-key":     {Type: "openrouter", Enabled: true},
			"unknown":    {Type: "carrier-pigeon", APIKey: "k4", Enabled: true},
		},
	})

	names := r.ListLLM()
	if len(names) != 2 || names[0] != "openai" || names[1] != "openrouter" {
		t.Fatalf("ListLLM() = %v, want [openai openrouter]", names)
	}

	client, _ := r.GetLLM("openrouter")
	or, ok := client.(*OpenRouterClient)
	if !ok {
		t.Fatalf("openrouter client type = %T", client)
	}
	if or.Model() != "google/gemini-2.5-flash" {
		t.Errorf("Model() = %s", or.Model())
	}

	client, _ = r.GetLLM("openai")
	if _, ok := client.(*OpenAIClient); !ok {
		t.Errorf("openai client type = %T", client)
	}
}

func TestRegistry_Reload(t *testing.T) {
	base := RegistryConfig{LLMProviders: map[string]LLMProviderConfig{
		"openrouter": {Type: "openrouter", APIKey: "k1", Enabled: true},
	}}
	r := NewRegistryFromConfig(base)
	before, _ := r.GetLLM("openrouter")

	t.Run("unchanged config keeps client", func(t *testing.T) {
		r.Reload(base)
		after, _ := r.GetLLM("openrouter")
		if after != before {
			t.Error("client should be reused when config is unchanged")
		}
	})

	t.Run("changed config rebuilds client", func(t *testing.T) {
		r.Reload(RegistryConfig{LLMProviders: map[string]LLMProviderConfig{
			"openrouter": {Type: "openrouter", APIKey: "k1", Model: "openai/gpt-4o", Enabled: true},
		}})
		after, _ := r.GetLLM("openrouter")
		if after == before {
			t.Error("client should be rebuilt when config changes")
		}
		if after.(*OpenRouterClient).Model() != "openai/gpt-4o" {
			t.Error("rebuilt client should use the new model")
		}
	})

	t.Run("removed provider is unregistered", func(t *testing.T) {
		r.RegisterLLM("manual", NewMockClient())
		r.Reload(RegistryConfig{})
		if r.HasLLM("openrouter") {
			t.Error("openrouter should be removed")
		}
		if !r.HasLLM("manual") {
			t.Error("directly registered clients are not managed by Reload")
		}
	})
}
