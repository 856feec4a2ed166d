package engine

// Shader sources for the off-screen box scene. The mosaic program is
// generated from the shader package graphs.

const boxVertexShaderSource = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 Normal;

void main() {
    // rotation and uniform scale only, so mat3(uModel) keeps normals perpendicular
    Normal = normalize(mat3(uModel) * aNormal);
    gl_Position = uProjection * uView * uModel * vec4(aPos, 1.0);
}
`

const boxFragmentShaderSource = `
#version 410 core
in vec3 Normal;
out vec4 FragColor;

uniform vec3 uAlbedo;
uniform vec3 uAmbientColor;
uniform float uAmbientIntensity;
uniform vec3 uLightColor;
uniform float uLightIntensity;
uniform vec3 uLightDirection;

const float PI = 3.14159265359;

void main() {
    vec3 n = normalize(Normal);
    float diffuse = max(dot(n, uLightDirection), 0.0);

    // Lambert BRDF, linear radiance
    vec3 irradiance = uAmbientColor * uAmbientIntensity + uLightColor * uLightIntensity * diffuse;
    vec3 color = uAlbedo * irradiance / PI;

    // encode for display
    FragColor = vec4(pow(clamp(color, 0.0, 1.0), vec3(1.0 / 2.2)), 1.0);
}
`
